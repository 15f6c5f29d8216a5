package dbmongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelgram/internal/common"
)

func TestAssetRepository_FailsFastWhenNotReady(t *testing.T) {
	repo := &AssetRepository{ready: notReady, opTimeout: defaultOpTimeout}
	ctx := context.Background()

	_, err := repo.Insert(ctx, &MediaAsset{Kind: common.MediaKindImage, UserID: "u1"})
	assert.ErrorIs(t, err, common.ErrUnavailable)

	_, err = repo.FindByID(ctx, common.MediaKindImage, "64b7f0c2a1d3e4f5a6b7c8d9")
	assert.ErrorIs(t, err, common.ErrUnavailable)

	_, err = repo.FindByOwner(ctx, common.MediaKindAudio, "u1")
	assert.ErrorIs(t, err, common.ErrUnavailable)

	_, err = repo.FindLinkedAudio(ctx, "64b7f0c2a1d3e4f5a6b7c8d9")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestAssetRepository_MalformedIDIsNotFound(t *testing.T) {
	repo := &AssetRepository{ready: notReady}
	ctx := context.Background()

	_, err := repo.FindByID(ctx, common.MediaKindImage, "not-an-object-id")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.DeleteByID(ctx, common.MediaKindAudio, "xyz")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAssetRepository_EmptyOwnerSet(t *testing.T) {
	repo := &AssetRepository{ready: notReady}
	assets, err := repo.FindByOwnerSet(context.Background(), common.MediaKindImage, nil, 20)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestAssetRepository_InsertRejectsUnknownKind(t *testing.T) {
	repo := &AssetRepository{ready: func() bool { return true }}
	_, err := repo.Insert(context.Background(), &MediaAsset{Kind: "video"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAudioWindowOptions_Unbounded(t *testing.T) {
	opts := audioWindowOptions()
	assert.Nil(t, opts.Limit)
	assert.NotNil(t, opts.Sort)
}
