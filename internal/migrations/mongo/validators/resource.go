package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "type", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner_id":   bson.M{"bsonType": "string"},
			"name":       bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"type":       bson.M{"bsonType": "string", "enum": []string{"room", "desk"}},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
