package kafka

import (
	"github.com/IBM/sarama"
)

// EventInterceptor stamps every produced record with the emitting service.
type EventInterceptor struct{}

func NewEventInterceptor() *EventInterceptor {
	return &EventInterceptor{}
}

func (i *EventInterceptor) OnSend(msg *sarama.ProducerMessage) {
	msg.Headers = append(msg.Headers, sarama.RecordHeader{
		Key:   []byte("produced-by"),
		Value: []byte("vetaqp-backoffice"),
	})
}
