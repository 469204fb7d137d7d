package models

import "encoding/json"

// The API serializes document ids as "_id"; some endpoints also send "id".
// decodeWithId unmarshals data into target and returns the "_id" value so the
// caller can fall back to it when "id" was absent.
func decodeWithId(data []byte, target any) (string, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return "", err
	}
	var ids struct {
		MongoId string `json:"_id"`
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return "", err
	}
	return ids.MongoId, nil
}
