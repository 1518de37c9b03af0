package notification

import "strings"

// go-toast renders its XML inside a CDATA section of a double-quoted
// PowerShell here-string, so text has to survive both layers.
var (
	cdataEnd = strings.NewReplacer("]]>", "]]]]><![CDATA[>")

	hereString = strings.NewReplacer(
		"`", "``",
		"$", "`$",
		`"`, "`\"",
	)
)

// EscapeToastText escapes s for a go-toast title or message: the CDATA
// terminator is split, and the characters an expandable here-string
// interprets are backtick-escaped.
func EscapeToastText(s string) string {
	return hereString.Replace(cdataEnd.Replace(s))
}

// text returns the escaped title and message for n.
func (t *ToastNotifier) text(notification Notification) (title, message string) {
	return EscapeToastText(notification.Title), EscapeToastText(notification.Message)
}
