package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("events")
		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 255},
			&core.TextField{Name: "description"},
			&core.TextField{Name: "rules"},
			&core.TextField{Name: "location"},
			&core.DateField{Name: "event_date", Required: true},
			// Time of day is stored independently of the date.
			&core.TextField{Name: "event_time", Required: true, Pattern: `^\d{2}:\d{2}$`},
			&core.DateField{Name: "registration_deadline"},
			&core.NumberField{Name: "max_participants", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.FileField{
				Name:      "image",
				MaxSelect: 1,
				MaxSize:   5242880,
				MimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
			},
			&core.RelationField{
				Name:         "created_by",
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// All access goes through the custom /api/campus routes; the raw
		// collection API stays superuser-only.
		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
