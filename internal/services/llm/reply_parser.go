package llm

import (
	"regexp"
	"strings"
)

// MaxFollowUps caps the follow-up questions returned with an answer
const MaxFollowUps = 3

var (
	answerSectionRegex   = regexp.MustCompile(`(?is)ANSWER:\s*(.*?)(?:FOLLOW-UP QUESTIONS:|$)`)
	followUpSectionRegex = regexp.MustCompile(`(?is)FOLLOW-UP QUESTIONS:\s*(.*)$`)
	ordinalPrefixRegex   = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•](?:\s|$))\s*`)
)

// Answer is a parsed model reply
type Answer struct {
	Answer    string   `json:"answer"`
	FollowUps []string `json:"follow_ups"`
	Attempts  int      `json:"-"`
}

// ParseReply splits a raw reply into the answer and up to MaxFollowUps
// follow-up questions. Markers are matched case-insensitively. Without an
// ANSWER: marker the whole reply is the answer.
func ParseReply(raw string) *Answer {
	answer := &Answer{FollowUps: []string{}}

	if match := answerSectionRegex.FindStringSubmatch(raw); match != nil {
		answer.Answer = strings.TrimSpace(match[1])
	} else {
		answer.Answer = strings.TrimSpace(raw)
	}

	match := followUpSectionRegex.FindStringSubmatch(raw)
	if match == nil {
		return answer
	}

	for _, line := range strings.Split(match[1], "\n") {
		question := strings.TrimSpace(ordinalPrefixRegex.ReplaceAllString(line, ""))
		if question == "" {
			continue
		}
		answer.FollowUps = append(answer.FollowUps, question)
		if len(answer.FollowUps) == MaxFollowUps {
			break
		}
	}

	return answer
}
