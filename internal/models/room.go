package models

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	privateRoomSep  = "--"
	groupRoomPrefix = "group-"
)

var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_.]{1,32}$`)

// ValidUsername reports whether name is safe to embed in room ids and room
// LIKE patterns: no room separator, no SQL wildcards. Enforced at
// registration; everything downstream assumes it.
func ValidUsername(name string) bool {
	return usernameRE.MatchString(name)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PrivateRoomID returns the canonical room id for a private conversation.
// It is symmetric: PrivateRoomID(a, b) == PrivateRoomID(b, a).
func PrivateRoomID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + privateRoomSep + pair[1]
}

// GroupRoomID returns the room id for a group conversation.
func GroupRoomID(groupID int64) string {
	return groupRoomPrefix + strconv.FormatInt(groupID, 10)
}

// IsGroupRoom reports whether the room id refers to a group conversation.
func IsGroupRoom(roomID string) bool {
	return strings.HasPrefix(roomID, groupRoomPrefix)
}

// PrivateRoomPeer returns the other participant of a private room.
// It returns false if the room is not a private room containing username.
func PrivateRoomPeer(roomID, username string) (string, bool) {
	if IsGroupRoom(roomID) {
		return "", false
	}
	parts := strings.SplitN(roomID, privateRoomSep, 2)
	if len(parts) != 2 {
		return "", false
	}
	switch username {
	case parts[0]:
		return parts[1], true
	case parts[1]:
		return parts[0], true
	}
	return "", false
}

// PrivateRoomPatterns returns the SQL LIKE patterns matching every private
// room the given user participates in. LIKE metacharacters in the username
// are escaped so the patterns only ever match that user's rooms.
func PrivateRoomPatterns(username string) (string, string) {
	escaped := likeEscaper.Replace(username)
	return escaped + privateRoomSep + "%", "%" + privateRoomSep + escaped
}
