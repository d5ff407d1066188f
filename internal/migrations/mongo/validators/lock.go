package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"resource_id", "token", "created_at", "expires_at"},
		"additionalProperties": false,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string"},
			"resource_id": bson.M{"bsonType": "string"},
			"token":       bson.M{"bsonType": "string"},
			"created_at":  bson.M{"bsonType": "date"},
			"expires_at":  bson.M{"bsonType": "date"},
		},
	},
}
