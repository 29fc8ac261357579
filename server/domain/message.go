package domain

import "strings"

// JoinMessage joins publish arguments with single spaces into a message body.
func JoinMessage(words []string) string {
	return strings.Join(words, " ")
}

// FormatDelivery renders the line sent to each subscriber of publisherID.
func FormatDelivery(publisherID ChannelID, message string) string {
	return publisherID.String() + ": " + message
}
