package service

import (
	"context"

	"micasa/internal/authz"
	"micasa/internal/cache"
	"micasa/internal/models"
	"micasa/internal/storage"
	"micasa/pkg/gravatar"

	log "github.com/sirupsen/logrus"
)

// presenter fills the response-only fields of stored documents.
type presenter struct {
	authorizer authz.Authorizer
	baseURL    string
}

func (p presenter) user(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	if u.ProfileImage != "" {
		u.ProfileImageURL = storage.PublicURL(p.baseURL, u.ProfileImage)
	} else {
		u.ProfileImageURL = gravatar.URL(u.Email)
	}
	if p.authorizer != nil {
		u.HomeRoute = p.authorizer.HomeRoute(u.Role)
	}
	if u.Wishlist == nil {
		u.Wishlist = []int64{}
	}
	u.Notifications = nil
	return u
}

func (p presenter) listing(l *models.Listing) *models.Listing {
	if l == nil {
		return nil
	}
	if l.ImageURLs == nil {
		l.ImageURLs = []string{}
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	l.Images = storage.PublicURLs(p.baseURL, l.ImageURLs)
	likes := l.LikeCount()
	l.Likes = &likes
	return l
}

func (p presenter) listings(ls []models.Listing) []models.Listing {
	for i := range ls {
		p.listing(&ls[i])
	}
	return ls
}

// invalidate drops cached keys. Failures only delay freshness until the TTL expires.
func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("cache invalidation failed")
		}
	}
}
