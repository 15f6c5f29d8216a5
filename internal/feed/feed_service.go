package feed

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
	"travelgram/internal/dbmysql"
	"travelgram/internal/user"
)

// DefaultUsername is shown for owners without a profile
const DefaultUsername = "traveler"

// AssetReader is the read side of the metadata repository
type AssetReader interface {
	FindByOwner(ctx context.Context, kind common.MediaKind, ownerID string) ([]*dbmongo.MediaAsset, error)
	FindByOwnerSet(ctx context.Context, kind common.MediaKind, ownerIDs []string, limit int) ([]*dbmongo.MediaAsset, error)
	FindLinkedAudio(ctx context.Context, imageID string) (*dbmongo.MediaAsset, error)
	FindAudioInWindow(ctx context.Context, ownerID string, at time.Time, window time.Duration) ([]*dbmongo.MediaAsset, error)
}

// SocialGraph is the part of the user service the feed reads
type SocialGraph interface {
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error)
}

type FeedUsecase interface {
	ComposeFeed(ctx context.Context, viewerID string) ([]Entry, error)
	ComposeProfileFeed(ctx context.Context, subjectID string) ([]Entry, error)
}

// Entry is one image with its optional audio and the owner's display fields.
// It is built at read time and never stored.
type Entry struct {
	Image    *dbmongo.MediaAsset
	Audio    *dbmongo.MediaAsset
	Username string
	PhotoURL string
}

type Options struct {
	Limit             int
	CorrelationWindow time.Duration
	Concurrency       int
}

type FeedService struct {
	assets AssetReader
	graph  SocialGraph
	opts   Options
	logger *zap.Logger
}

func NewFeedService(assets AssetReader, graph SocialGraph, opts Options, logger *zap.Logger) *FeedService {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.CorrelationWindow <= 0 {
		opts.CorrelationWindow = 60 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{assets: assets, graph: graph, opts: opts, logger: logger}
}

// ComposeFeed returns the newest images of the viewer and everyone they
// follow. A viewer without a profile simply follows nobody.
func (s *FeedService) ComposeFeed(ctx context.Context, viewerID string) ([]Entry, error) {
	following, err := s.graph.FollowingIDs(ctx, viewerID)
	if err != nil && !user.IsNotFound(err) {
		return nil, err
	}

	images, err := s.assets.FindByOwnerSet(ctx, common.MediaKindImage, ownerSet(viewerID, following), s.opts.Limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, images), nil
}

// ComposeProfileFeed returns every image of one user, newest first
func (s *FeedService) ComposeProfileFeed(ctx context.Context, subjectID string) ([]Entry, error) {
	images, err := s.assets.FindByOwner(ctx, common.MediaKindImage, subjectID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, images), nil
}

func ownerSet(viewerID string, following []string) []string {
	seen := make(map[string]bool, len(following)+1)
	owners := make([]string, 0, len(following)+1)
	for _, id := range append([]string{viewerID}, following...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		owners = append(owners, id)
	}
	return owners
}

// enrich attaches audio and profile fields. Failures here only degrade the
// affected entry.
func (s *FeedService) enrich(ctx context.Context, images []*dbmongo.MediaAsset) []Entry {
	entries := make([]Entry, len(images))
	if len(images) == 0 {
		return entries
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	var profiles map[string]*dbmysql.User
	g.Go(func() error {
		profiles = s.loadProfiles(ctx, images)
		return nil
	})

	for i, img := range images {
		i, img := i, img
		entries[i].Image = img
		g.Go(func() error {
			entries[i].Audio = s.correlate(ctx, img)
			return nil
		})
	}
	_ = g.Wait()

	for i := range entries {
		entries[i].Username = DefaultUsername
		if p, ok := profiles[entries[i].Image.UserID]; ok && p != nil {
			if p.Username != "" {
				entries[i].Username = p.Username
			}
			entries[i].PhotoURL = p.PhotoURL
		}
	}
	return entries
}

func (s *FeedService) loadProfiles(ctx context.Context, images []*dbmongo.MediaAsset) map[string]*dbmysql.User {
	ids := make([]string, 0, len(images))
	seen := map[string]bool{}
	for _, img := range images {
		if !seen[img.UserID] {
			seen[img.UserID] = true
			ids = append(ids, img.UserID)
		}
	}
	profiles, err := s.graph.ProfilesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("profile lookup failed, using default display fields", zap.Int("owners", len(ids)), zap.Error(err))
		return nil
	}
	return profiles
}

// correlate finds the audio for an image: an explicit link wins, otherwise
// the same owner's audio closest in time within the window. Audio that is
// explicitly linked to a different image is never paired by time.
func (s *FeedService) correlate(ctx context.Context, img *dbmongo.MediaAsset) *dbmongo.MediaAsset {
	imageID := img.IDHex()

	linked, err := s.assets.FindLinkedAudio(ctx, imageID)
	if err != nil {
		s.logger.Warn("linked audio lookup failed", zap.String("image_id", imageID), zap.Error(err))
	} else if linked != nil {
		return linked
	}

	candidates, err := s.assets.FindAudioInWindow(ctx, img.UserID, img.UploadDate, s.opts.CorrelationWindow)
	if err != nil {
		s.logger.Warn("audio window lookup failed", zap.String("image_id", imageID), zap.Error(err))
		return nil
	}
	return nearest(img, candidates)
}

func nearest(img *dbmongo.MediaAsset, candidates []*dbmongo.MediaAsset) *dbmongo.MediaAsset {
	var best *dbmongo.MediaAsset
	var bestGap time.Duration
	for _, c := range candidates {
		if c.ImageID != "" && c.ImageID != img.IDHex() {
			continue
		}
		gap := c.UploadDate.Sub(img.UploadDate)
		if gap < 0 {
			gap = -gap
		}
		if best == nil || gap < bestGap || (gap == bestGap && c.IDHex() < best.IDHex()) {
			best, bestGap = c, gap
		}
	}
	return best
}
