package cache

import "strings"

const (
	GlobalKeyPrefix = "welearn"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizListKey caches the full quiz list.
func QuizListKey() string {
	return GenerateCacheKey("quiz", "list", "all")
}

// RankingsKey caches the per-category leaderboards.
func RankingsKey() string {
	return GenerateCacheKey("progress", "rankings", "all")
}

// ClaimLockKey guards one user's claim for one calendar day.
func ClaimLockKey(userID, claimDate string) string {
	return GenerateCacheKey("reward", "claim", userID, claimDate)
}

// IdentityKey is the hash holding a learner profile's persisted identity.
func IdentityKey(profile string) string {
	return GenerateCacheKey("learner", "identity", profile)
}

// IdentityChannel carries identity change events for a profile.
func IdentityChannel(profile string) string {
	return GenerateCacheKey("learner", "identity", profile, "changes")
}
