// Package state tracks where each user is in a bot conversation.
// It is domain-agnostic: states are opaque strings defined by the bot.
package state
