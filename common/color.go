package common

import (
	"github.com/logrusorgru/aurora"
)

func AlertColor(str string) string {
	return aurora.Red(str).String()
}

func InfoColor(str string) string {
	return aurora.Green(str).String()
}

// NameWithColor renders known labels in green and "unknown" in red.
func NameWithColor(name string) string {
	if name == UnknownDesc {
		return AlertColor(name)
	}
	return InfoColor(name)
}
