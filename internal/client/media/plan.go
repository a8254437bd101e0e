package media

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
)

// ChunkSize is the multi-part division agreed with the server.
const ChunkSize = common.ChunkSize

// ByteRange is the slice of the file carried by one part.
type ByteRange struct {
	PartNumber int
	Offset     int64
	Length     int64
}

// SplitParts divides size bytes into ceil(size/chunk) ranges numbered from 1.
// Only the last range may be shorter than chunk.
func SplitParts(size, chunk int64) []ByteRange {
	if size <= 0 || chunk <= 0 {
		return nil
	}
	n := (size + chunk - 1) / chunk
	ranges := make([]ByteRange, 0, n)
	for i := int64(0); i < n; i++ {
		off := i * chunk
		length := chunk
		if off+length > size {
			length = size - off
		}
		ranges = append(ranges, ByteRange{PartNumber: int(i) + 1, Offset: off, Length: length})
	}
	return ranges
}

// TransferPlan is either a SinglePartPlan or a MultiPartPlan.
type TransferPlan interface {
	Media() int64
	isPlan()
}

type SinglePartPlan struct {
	MediaID int64
	URL     string
}

func (p SinglePartPlan) Media() int64 { return p.MediaID }
func (SinglePartPlan) isPlan()        {}

// PartTarget pairs a byte range with its presigned destination.
type PartTarget struct {
	ByteRange
	URL string
}

type MultiPartPlan struct {
	MediaID  int64
	UploadID string
	Parts    []PartTarget
}

func (p MultiPartPlan) Media() int64 { return p.MediaID }
func (MultiPartPlan) isPlan()        {}

var (
	errNoDestination = errors.New("init response has no upload destination")
	errPartMismatch  = errors.New("presigned parts do not match local split")
)

// PlanFromInit decides the transfer plan from the Init response. Multi-part
// plans must list exactly the parts SplitParts produces for size.
func PlanFromInit(resp *models.MediaInitResponse, size, chunk int64) (TransferPlan, error) {
	if resp == nil {
		return nil, errNoDestination
	}

	if len(resp.PresignedURLParts) == 0 {
		if resp.PresignedURL == "" {
			return nil, errNoDestination
		}
		return SinglePartPlan{MediaID: resp.ID, URL: resp.PresignedURL}, nil
	}

	given := append([]models.PresignedURLPart(nil), resp.PresignedURLParts...)
	sort.Slice(given, func(i, j int) bool { return given[i].PartNumber < given[j].PartNumber })

	ranges := SplitParts(size, chunk)
	if len(given) != len(ranges) {
		return nil, fmt.Errorf("%w: server issued %d parts, file needs %d", errPartMismatch, len(given), len(ranges))
	}

	parts := make([]PartTarget, len(ranges))
	for i, r := range ranges {
		if given[i].PartNumber != r.PartNumber {
			return nil, fmt.Errorf("%w: expected part %d, got %d", errPartMismatch, r.PartNumber, given[i].PartNumber)
		}
		if given[i].URL == "" {
			return nil, fmt.Errorf("%w: part %d has no url", errPartMismatch, r.PartNumber)
		}
		parts[i] = PartTarget{ByteRange: r, URL: given[i].URL}
	}

	return MultiPartPlan{MediaID: resp.ID, UploadID: resp.UploadID, Parts: parts}, nil
}

// UploadedPart is the evidence of one transferred part.
type UploadedPart struct {
	PartNumber int
	ETag       string
}

func confirmRequest(plan TransferPlan, parts []UploadedPart) models.MediaUploadedRequest {
	req := models.MediaUploadedRequest{MediaID: plan.Media()}
	if len(parts) == 0 {
		return req
	}
	sorted := append([]UploadedPart(nil), parts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })
	req.Parts = make([]models.MediaUploadPart, len(sorted))
	for i, p := range sorted {
		req.Parts[i] = models.MediaUploadPart{PartNumber: p.PartNumber, ETag: p.ETag}
	}
	return req
}
