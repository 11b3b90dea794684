package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions. Every payload carries a short tag of the session and the
// 1-based question number, so buttons from a replaced quiz or an earlier
// question can be recognised and ignored.
const (
	actionSelect  = "sel"
	actionAdvance = "next"
)

// sessionTagLen keeps payloads well under Telegram's 64-byte limit.
const sessionTagLen = 8

type callbackData struct {
	action   string
	tag      string
	question int
	choice   int
}

func sessionTag(sessionID string) string {
	if len(sessionID) > sessionTagLen {
		return sessionID[:sessionTagLen]
	}
	return sessionID
}

func selectData(sessionID string, question, choice int) string {
	return fmt.Sprintf("%s:%s:%d:%d", actionSelect, sessionTag(sessionID), question, choice)
}

func advanceData(sessionID string, question int) string {
	return fmt.Sprintf("%s:%s:%d", actionAdvance, sessionTag(sessionID), question)
}

func parseCallbackData(data string) (callbackData, bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 || parts[1] == "" {
		return callbackData{}, false
	}
	question, err := strconv.Atoi(parts[2])
	if err != nil || question < 1 {
		return callbackData{}, false
	}

	switch {
	case parts[0] == actionSelect && len(parts) == 4:
		choice, err := strconv.Atoi(parts[3])
		if err != nil || choice < 0 {
			return callbackData{}, false
		}
		return callbackData{action: actionSelect, tag: parts[1], question: question, choice: choice}, true
	case parts[0] == actionAdvance && len(parts) == 3:
		return callbackData{action: actionAdvance, tag: parts[1], question: question}, true
	default:
		return callbackData{}, false
	}
}
