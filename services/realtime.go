package services

import (
	"fmt"
	"log"

	pubnub "github.com/pubnub/go"
)

// PubNubPublisher pushes participants-changed messages on per-event
// channels. Publishing is fire and forget: the pushed count is a hint
// for subscribers to re-fetch, never an authoritative value.
type PubNubPublisher struct {
	pubnub *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pubnub: pn}
}

func (p *PubNubPublisher) PublishCount(eventID string, count int) {
	channel := fmt.Sprintf("event-%s", eventID)

	_, status, err := p.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":     "participants_changed",
			"event_id": eventID,
			"count":    count,
		}).
		Execute()
	if err != nil {
		log.Printf("Error publishing count update for event %s: %v", eventID, err)
		return
	}
	if status.Error != nil {
		log.Printf("PubNub publish for event %s returned status %d", eventID, status.StatusCode)
	}
}
