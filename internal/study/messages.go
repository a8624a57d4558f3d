package study

import "fmt"

// Messages are the participant-facing texts. Any field left empty in the
// study config falls back to the default wording below.
type Messages struct {
	Welcome           string `yaml:"welcome"`
	Intro             string `yaml:"intro"`
	InvalidCode       string `yaml:"invalid_code"`
	PromptSuffix      string `yaml:"prompt_suffix"`
	Done              string `yaml:"done"`
	Finished          string `yaml:"finished"`
	TryAgain          string `yaml:"try_again"`
	Restarted         string `yaml:"restarted"`
	InvalidEmpty      string `yaml:"invalid_empty"`
	InvalidCharacters string `yaml:"invalid_characters"`
	TooLong           string `yaml:"too_long"`
	WithdrawnNotice   string `yaml:"withdrawn_notice"`
	WithdrawAck       string `yaml:"withdraw_ack"`
}

// withDefaults fills empty fields. maxLen feeds the too-long wording.
func (m Messages) withDefaults(maxLen int) Messages {
	def := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
		}
	}
	def(&m.Welcome, "Welcome. Please enter your participant code to begin (example: P014).\nDo not enter your name or any personal info.")
	def(&m.Intro, "Starting the game now.")
	def(&m.InvalidCode, "That does not look like a valid participant code.\nPlease enter something like P014.")
	def(&m.PromptSuffix, "Reply with a hashtag (example: #breakingnews).")
	def(&m.Done, "All done. Thank you!")
	def(&m.Finished, "The study is finished. Thank you for taking part!")
	def(&m.TryAgain, "Sorry, something went wrong saving your response. Please send it again.")
	def(&m.Restarted, "Restarted. Please enter your participant code to begin (example: P014).")
	def(&m.InvalidEmpty, "Please reply with a single hashtag-style word using only letters and numbers.\nExample: #breakingnews")
	def(&m.InvalidCharacters, "Hashtags may only contain letters and numbers.\nNo spaces or punctuation. Example: #breakingnews")
	def(&m.TooLong, fmt.Sprintf("That hashtag is too long. Please keep it to %d characters or fewer.", maxLen))
	def(&m.WithdrawnNotice, "You previously withdrew. If this is a mistake, contact the research team.")
	def(&m.WithdrawAck, "You have withdrawn. No further responses will be recorded. Thank you.")
	return m
}

// forValidation picks the text naming the specific failure kind.
func (m Messages) forValidation(kind ValidationKind) string {
	switch kind {
	case ValidationInvalidCharacters:
		return m.InvalidCharacters
	case ValidationTooLong:
		return m.TooLong
	default:
		return m.InvalidEmpty
	}
}
