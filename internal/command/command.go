package command

import (
	"strings"
	"unicode"
)

// fillerPhrases are removed from the command in this order.
var fillerPhrases = []string{"how to make", "recipe for", "hey chefgenie"}

var stopWords = map[string]bool{
	"stop":   true,
	"cancel": true,
	"exit":   true,
	"quit":   true,
}

// Command is a parsed voice or text command.
type Command struct {
	Raw  string
	Dish string
	Stop bool
}

// Parse lowercases the raw text and either flags it as a stop command or
// extracts the dish name from it.
func Parse(text string) Command {
	if IsStop(text) {
		return Command{Raw: text, Stop: true}
	}
	return Command{Raw: text, Dish: Normalize(text)}
}

// IsStop reports whether the lowercased text is exactly one of the stop words.
func IsStop(text string) bool {
	return stopWords[strings.ToLower(text)]
}

// Normalize lowercases text, deletes every filler phrase and trims surrounding
// whitespace and punctuation. Deletion repeats until no filler phrase is left.
func Normalize(text string) string {
	dish := strings.ToLower(text)
	for {
		stripped := stripFillers(dish)
		if stripped == dish {
			break
		}
		dish = stripped
	}
	return strings.TrimFunc(dish, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func stripFillers(s string) string {
	for _, phrase := range fillerPhrases {
		s = strings.ReplaceAll(s, phrase, "")
	}
	return s
}
