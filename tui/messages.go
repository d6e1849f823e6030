package tui

import (
	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

type responseMsg struct{ response at.Response }

type noticeMsg struct{ text string }

type statusMsg struct{ snapshot modem.Snapshot }

type transmittedMsg struct{ send modem.Send }

type activityMsg struct{ activity modem.Activity }

type editorMsg struct {
	text   string
	cursor int
}

type submitErrMsg struct{ err error }
