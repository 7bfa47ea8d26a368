package kafka

// Topics для Kafka
const (
	TopicOrderEvents     = "roms.order.events"
	TopicPaymentEvents   = "roms.payment.events"
	TopicDeadLetterQueue = "roms.dlq"
)

// Kafka headers для replay сообщений из DLQ
const (
	HeaderOriginalTopic = "x-original-topic"
	HeaderFailedAt      = "x-failed-at"
)
