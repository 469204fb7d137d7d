package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommunityFounder is the public identity of a community's founder
type CommunityFounder struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

func (f *CommunityFounder) UnmarshalJSON(data []byte) error {
	type plain CommunityFounder
	mongoId, err := decodeWithId(data, (*plain)(f))
	if err != nil {
		return err
	}
	if f.Id == "" {
		f.Id = mongoId
	}
	return nil
}

// Community is both the list entry of the caller's collections and the
// detail view of a single community.
type Community struct {
	Id             string            `json:"id"`
	Name           string            `json:"name"`
	Bio            string            `json:"bio,omitempty"`
	ProfilePhoto   string            `json:"profile_photo,omitempty"`
	Cost           decimal.Decimal   `json:"cost"`
	FollowersCount int               `json:"followersCount"`
	CreatorsCount  int               `json:"creatorsCount"`
	IsFollowing    bool              `json:"isFollowing"`
	IsCreator      bool              `json:"isCreator"`
	IsFounder      bool              `json:"isFounder,omitempty"`
	Founder        *CommunityFounder `json:"founder,omitempty"`
	CreatedAt      time.Time         `json:"createdAt,omitempty"`
	JoinedAt       *time.Time        `json:"joinedAt,omitempty"`
}

func (c *Community) UnmarshalJSON(data []byte) error {
	type plain Community
	mongoId, err := decodeWithId(data, (*plain)(c))
	if err != nil {
		return err
	}
	if c.Id == "" {
		c.Id = mongoId
	}
	return nil
}

// CommunityStatistics counts the caller's memberships per role
type CommunityStatistics struct {
	FoundedCount   int `json:"foundedCount"`
	CreatorCount   int `json:"creatorCount"`
	FollowingCount int `json:"followingCount"`
}

// NewCommunity is the form used to found a community
type NewCommunity struct {
	Name         string `validate:"required,max=60"`
	Bio          string `validate:"max=500"`
	Cost         string `validate:"omitempty,numeric"`
	ProfilePhoto *Upload
}
