// Package rabbitmq содержит подключение к RabbitMQ, объявление обменника
// и очередей биллинговых уведомлений, публикацию и потребление сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к RabbitMQ, повторяя попытки с паузой delay.
// Брокер часто стартует позже приложения, поэтому первые отказы ожидаемы.
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: after %d attempts: %w", op, retries, lastErr)
}
