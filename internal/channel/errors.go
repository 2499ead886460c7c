package channel

import (
	"fmt"

	"github.com/packline-io/packline/pkg/errors"
)

// CodeTopicNotFound tags a lookup against a (topic, partition) the App has
// never registered.
const CodeTopicNotFound = "CHANNEL_TOPIC_NOT_FOUND"

func ErrTopicNotFound(topic string, partition uint32) *errors.AppError {
	msg := fmt.Sprintf("no channel registered for topic %q partition %d", topic, partition)
	return errors.New(CodeTopicNotFound, msg, nil)
}
