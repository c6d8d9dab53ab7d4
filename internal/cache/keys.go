package cache

import (
	"strings"
	"time"
)

// ListTTL is the backstop expiry for list-shaped and search entries. These
// are also explicitly invalidated where possible; the TTL only bounds how
// long an entry missed by invalidation (search results, races) can live.
const ListTTL = time.Hour

// Key builders. Every cache key in the system is constructed here so the
// namespaces cannot drift between the code that populates an entry and the
// code that must invalidate it.

func UserKey(userID string) string      { return "user:" + userID }
func ShortKey(shortID string) string    { return "short:" + shortID }
func ShortsOfKey(userID string) string  { return "shorts_user:" + userID }
func FollowersKey(userID string) string { return "followers_user:" + userID }
func LikesKey(shortID string) string    { return "likes_short:" + shortID }
func FeedKey(userID string) string      { return "feed_user:" + userID }
func BytesKey(blobID string) string     { return "bytes:" + blobID }

// SearchKey uppercases the pattern so that searches differing only in case
// share one entry; the query itself is case-insensitive.
func SearchKey(pattern string) string { return "user_search_" + strings.ToUpper(pattern) }
