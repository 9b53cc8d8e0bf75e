// Package chat holds the conversation state of a chat panel and the rules
// for submitting a prompt: validation, the optimistic append of the user
// message, the single outbound request, and merging or reporting its result.
//
// Rendering, notifications and data refresh are supplied by the caller
// through the Sender, Notifier and Refresher interfaces, so the package runs
// without a terminal.
package chat
