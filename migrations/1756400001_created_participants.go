package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("participants")
		collection.Fields.Add(
			&core.RelationField{
				Name:         "event_id",
				CollectionId: events.Id,
				Required:     true,
				MaxSelect:    1,
				// Deleting an event leaves its participants in place.
				CascadeDelete: false,
			},
			&core.TextField{Name: "name", Required: true, Max: 255},
			&core.EmailField{Name: "email", Required: true},
			&core.TextField{Name: "mobile_number", Required: true, Max: 20},
			&core.TextField{Name: "class", Required: true, Max: 100},
			&core.TextField{Name: "department", Required: true, Max: 100},
			&core.AutodateField{Name: "registered_at", OnCreate: true},
		)

		// One registration per email per event, enforced by storage so a
		// duplicate-check race cannot produce two rows.
		collection.AddIndex("idx_participants_event_email", true, "event_id, email", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("participants")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
