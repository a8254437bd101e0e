package media

import (
	"testing"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitParts_CoversFileWithoutGaps(t *testing.T) {
	sizes := []int64{1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 2 * mib, 20 * mib, 3 * ChunkSize, 100*mib + 7}
	for _, size := range sizes {
		parts := SplitParts(size, ChunkSize)

		want := int((size + ChunkSize - 1) / ChunkSize)
		require.Len(t, parts, want, "size %d", size)

		var sum, next int64
		for i, p := range parts {
			assert.Equal(t, i+1, p.PartNumber)
			assert.Equal(t, next, p.Offset)
			assert.LessOrEqual(t, p.Length, ChunkSize)
			assert.Positive(t, p.Length)
			if i < len(parts)-1 {
				assert.Equal(t, ChunkSize, p.Length)
			}
			sum += p.Length
			next = p.Offset + p.Length
		}
		assert.Equal(t, size, sum, "size %d", size)
	}
}

func TestSplitParts_TwentyMiB(t *testing.T) {
	parts := SplitParts(20*mib, 8*mib)
	assert.Equal(t, []ByteRange{
		{PartNumber: 1, Offset: 0, Length: 8 * mib},
		{PartNumber: 2, Offset: 8 * mib, Length: 8 * mib},
		{PartNumber: 3, Offset: 16 * mib, Length: 4 * mib},
	}, parts)
}

func TestSplitParts_Empty(t *testing.T) {
	assert.Empty(t, SplitParts(0, ChunkSize))
	assert.Empty(t, SplitParts(10, 0))
}

func TestPlanFromInit(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		plan, err := PlanFromInit(&models.MediaInitResponse{Media: models.Media{ID: 501}, PresignedURL: "https://x/y"}, 2*mib, ChunkSize)
		require.NoError(t, err)
		assert.Equal(t, SinglePartPlan{MediaID: 501, URL: "https://x/y"}, plan)
	})

	t.Run("multi", func(t *testing.T) {
		plan, err := PlanFromInit(multiInit(7, 3), 20*mib, ChunkSize)
		require.NoError(t, err)
		mp, ok := plan.(MultiPartPlan)
		require.True(t, ok)
		assert.Equal(t, int64(7), mp.Media())
		assert.Equal(t, "up-1", mp.UploadID)
		require.Len(t, mp.Parts, 3)
		assert.Equal(t, 4*mib, mp.Parts[2].Length)
		assert.Equal(t, "https://s3/part/3", mp.Parts[2].URL)
	})

	t.Run("gap", func(t *testing.T) {
		resp := multiInit(7, 3)
		resp.PresignedURLParts[1].PartNumber = 4
		_, err := PlanFromInit(resp, 20*mib, ChunkSize)
		require.ErrorIs(t, err, errPartMismatch)
	})

	t.Run("zero indexed", func(t *testing.T) {
		resp := multiInit(7, 3)
		for i := range resp.PresignedURLParts {
			resp.PresignedURLParts[i].PartNumber--
		}
		_, err := PlanFromInit(resp, 20*mib, ChunkSize)
		require.ErrorIs(t, err, errPartMismatch)
	})

	t.Run("too many", func(t *testing.T) {
		_, err := PlanFromInit(multiInit(7, 4), 20*mib, ChunkSize)
		require.ErrorIs(t, err, errPartMismatch)
	})

	t.Run("no destination", func(t *testing.T) {
		_, err := PlanFromInit(&models.MediaInitResponse{Media: models.Media{ID: 1}}, 10, ChunkSize)
		require.ErrorIs(t, err, errNoDestination)
		_, err = PlanFromInit(nil, 10, ChunkSize)
		require.ErrorIs(t, err, errNoDestination)
	})
}

func TestConfirmRequest_SortsParts(t *testing.T) {
	plan := MultiPartPlan{MediaID: 3}
	req := confirmRequest(plan, []UploadedPart{{2, "b"}, {1, "a"}, {3, "c"}})
	assert.Equal(t, []models.MediaUploadPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 2, ETag: "b"}, {PartNumber: 3, ETag: "c"}}, req.Parts)

	single := confirmRequest(SinglePartPlan{MediaID: 501}, nil)
	assert.Nil(t, single.Parts)
}

func TestProgressTracker_NeverDecreases(t *testing.T) {
	var seen []int
	tr := newProgressTracker(ProgressFunc(func(p int) { seen = append(seen, p) }))
	for _, p := range []int{0, 10, 5, 10, 40, -3, 120, 90} {
		tr.report(p)
	}
	assert.Equal(t, []int{0, 10, 40, 100}, seen)
}

func TestPartProgress(t *testing.T) {
	assert.Equal(t, 0, partProgress(0, 3, 0, 8))
	assert.Equal(t, 16, partProgress(0, 3, 4, 8))
	assert.Equal(t, 50, partProgress(1, 2, 0, 8))
	assert.Equal(t, 100, partProgress(2, 2, 0, 0))
	assert.Equal(t, 100, partProgress(0, 0, 0, 0))
}

func TestKind(t *testing.T) {
	assert.Equal(t, models.MediaTypeImage, Kind("image/png"))
	assert.Equal(t, models.MediaTypeImage, Kind("IMAGE/GIF"))
	assert.Equal(t, models.MediaTypeVideo, Kind("video/mp4"))
	assert.Equal(t, models.MediaTypeVideo, Kind("application/octet-stream"))
}
