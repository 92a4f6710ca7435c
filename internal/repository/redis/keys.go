package redis

import "fmt"

const ns = "tixinv:v1"

// KeyStats is the cache key of the aggregate report of one event, or of every
// ticket type when eventID is empty.
func KeyStats(eventID string) string {
	if eventID == "" {
		return ns + ":stats:all"
	}

	return fmt.Sprintf("%s:stats:event:%s", ns, eventID)
}

// KeyStatsGen counts the invalidations of the report under KeyStats(eventID).
func KeyStatsGen(eventID string) string {
	return KeyStats(eventID) + ":gen"
}

func KeyIdem(key string) string {
	return ns + ":idem:" + key
}

func KeyAlertLevel(ticketTypeID string) string {
	return ns + ":alert:" + ticketTypeID
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelStockChanged() string {
	return ns + ":stock:changed"
}
