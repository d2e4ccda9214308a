package redis

const (
	// KeyPrefix namespaces every key written by contesthub
	KeyPrefix = "contesthub:"
	// KeyPrefixKV is the prefix for plain key-value entries
	KeyPrefixKV = KeyPrefix + "kv:"
	// ChannelPrefixNotify is the prefix for per-key change channels
	ChannelPrefixNotify = KeyPrefix + "notify:"
)

// DataKey returns the Redis key holding the value of a logical key
func DataKey(key string) string {
	return KeyPrefixKV + key
}

// NotifyChannel returns the pub/sub channel announcing changes of a logical key
func NotifyChannel(key string) string {
	return ChannelPrefixNotify + key
}
