package common

const (
	RedisStreamNewsAnalysis = "news.analysis"

	RedisStreamGroup    = "analyzer-group"
	RedisStreamConsumer = "analyzer-consumer"

	// RedisStreamPayloadField is the stream entry field that carries the JSON payload.
	RedisStreamPayloadField = "payload"
)
