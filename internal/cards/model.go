package cards

import (
	"regexp"

	"github.com/google/uuid"
)

var blankPattern = regexp.MustCompile(`_{2,}`)

// Prompt is a fill-in-the-blank card. PickCount is the number of response
// cards a player must submit for it.
type Prompt struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	PickCount int    `json:"pickCount"`
}

type Response struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func NewPrompt(text string) Prompt {
	return Prompt{ID: uuid.New().String(), Text: text, PickCount: PickCount(text)}
}

func NewResponse(text string) Response {
	return Response{ID: uuid.New().String(), Text: text}
}

// PickCount counts the blanks in text: maximal runs of two or more
// underscores. A prompt without blanks still takes one card.
func PickCount(text string) int {
	n := len(blankPattern.FindAllStringIndex(text, -1))
	if n < 1 {
		return 1
	}
	return n
}
