package at

// UnknownErrorText is returned by Translate for codes outside the table.
const UnknownErrorText = "Unknown error code."

var errorTexts = map[uint16]string{
	1:  "AT command missing 0x0D 0x0A.",
	2:  "AT command missing 'AT'.",
	4:  "Unknown AT command.",
	5:  "Data length specified does not match the data length.",
	10: "Transmit time exceeds limit.",
	12: "CRC error on receive.",
	13: "TX data exceeds 240 bytes.",
	14: "Failed to write flash memory.",
	15: "Unknown failure.",
	17: "Last TX was not completed.",
	18: "Preamble value is not allowed.",
	19: "RX failure. Header error.",
	20: "Invalid time in MODE 2 setting.",
}

// Translate returns operator-facing text for a +ERR code. It never fails.
func Translate(code uint16) string {
	if s, ok := errorTexts[code]; ok {
		return s
	}
	return UnknownErrorText
}
