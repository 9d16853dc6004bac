package validators

import "go.mongodb.org/mongo-driver/bson"

// ProjectInquiryValidator is deliberately loose: almost every wizard field is
// optional and the set evolves with the intake form.
var ProjectInquiryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"current_step",
			"status",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"current_step": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  20,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"in_progress",
					"submitted",
				},
			},

			"goals": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"features": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
