package services

import (
	"encoding/json"
	"fmt"

	"github.com/Lllllllleong/sowforge/internal/models"
)

// DecodeGCSEvent unwraps a CloudEvent data payload into a GCS event. Both
// direct Eventarc delivery and the Pub/Sub push envelope used for manual
// re-triggers are accepted; the envelope carries the same JSON base64
// encoded under message.data.
func DecodeGCSEvent(data []byte) (models.GCSEvent, error) {
	var event models.GCSEvent

	var envelope models.PubSubEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Message.Data) > 0 {
		if err := json.Unmarshal(envelope.Message.Data, &event); err != nil {
			return models.GCSEvent{}, fmt.Errorf("failed to decode pubsub envelope payload: %w", err)
		}
	} else if err := json.Unmarshal(data, &event); err != nil {
		return models.GCSEvent{}, fmt.Errorf("failed to decode event data: %w", err)
	}
	if event.Bucket == "" || event.Name == "" {
		return models.GCSEvent{}, fmt.Errorf("event data is missing bucket or name: %s", string(data))
	}
	return event, nil
}
