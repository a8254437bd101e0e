package storage

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LocalPrefix is the route the local store serves objects under.
const LocalPrefix = "/storage"

type localUpload struct {
	key   string
	parts map[int][]byte
	etags map[int]string
}

// LocalStore keeps objects in memory and serves them from the API router.
// Its presigned URLs carry an HMAC signature and an expiry so they behave
// like the S3 ones: bound to one method, key and part.
type LocalStore struct {
	baseURL string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	objects map[string][]byte
	uploads map[string]*localUpload
}

// NewLocalStore returns a store whose URLs start with baseURL, the public
// origin of the server mounting Register.
func NewLocalStore(baseURL string, secret []byte, expiry time.Duration) *LocalStore {
	return &LocalStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		expiry:  expiry,
		now:     time.Now,
		objects: make(map[string][]byte),
		uploads: make(map[string]*localUpload),
	}
}

// Register mounts the object PUT and GET routes on r.
func (l *LocalStore) Register(r gin.IRoutes) {
	r.PUT(LocalPrefix+"/*key", l.handlePut)
	r.GET(LocalPrefix+"/*key", l.handleGet)
}

func (l *LocalStore) sign(method, key, uploadID, part, expires string) string {
	mac := hmac.New(sha256.New, l.secret)
	fmt.Fprintf(mac, "%s\n%s\n%s\n%s\n%s", method, key, uploadID, part, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (l *LocalStore) presign(method, key, uploadID string, part int) string {
	q := url.Values{}
	expires := strconv.FormatInt(l.now().Add(l.expiry).Unix(), 10)
	partStr := ""
	if uploadID != "" {
		partStr = strconv.Itoa(part)
		q.Set("uploadId", uploadID)
		q.Set("partNumber", partStr)
	}
	q.Set("expires", expires)
	q.Set("signature", l.sign(method, key, uploadID, partStr, expires))
	return l.baseURL + LocalPrefix + "/" + key + "?" + q.Encode()
}

func (l *LocalStore) verify(c *gin.Context, key string) bool {
	q := c.Request.URL.Query()
	expires := q.Get("expires")
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || l.now().Unix() > exp {
		return false
	}
	want := l.sign(c.Request.Method, key, q.Get("uploadId"), q.Get("partNumber"), expires)
	return hmac.Equal([]byte(want), []byte(q.Get("signature")))
}

func (l *LocalStore) PresignPut(ctx context.Context, key string) (string, error) {
	return l.presign(http.MethodPut, key, "", 0), nil
}

func (l *LocalStore) CreateMultipart(ctx context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.NewString()
	l.uploads[id] = &localUpload{key: key, parts: make(map[int][]byte), etags: make(map[int]string)}
	return id, nil
}

func (l *LocalStore) PresignPart(ctx context.Context, key, uploadID string, partNumber int) (string, error) {
	if partNumber < 1 {
		return "", fmt.Errorf("%w: part number %d", common.ErrorValidation, partNumber)
	}
	return l.presign(http.MethodPut, key, uploadID, partNumber), nil
}

func (l *LocalStore) CompleteMultipart(ctx context.Context, key, uploadID string, parts []models.MediaUploadPart) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	up, ok := l.uploads[uploadID]
	if !ok || up.key != key {
		return fmt.Errorf("%w: upload %s", common.ErrorNotFound, uploadID)
	}
	if err := ValidateParts(parts, len(parts)); err != nil {
		return err
	}
	if len(parts) != len(up.parts) {
		return fmt.Errorf("%w: %d parts stored, %d confirmed", common.ErrorValidation, len(up.parts), len(parts))
	}

	var size int
	for _, p := range parts {
		etag, ok := up.etags[p.PartNumber]
		if !ok {
			return fmt.Errorf("%w: part %d was never uploaded", common.ErrorValidation, p.PartNumber)
		}
		if etag != NormalizeETag(p.ETag) {
			return fmt.Errorf("%w: part %d etag mismatch", common.ErrorValidation, p.PartNumber)
		}
		size += len(up.parts[p.PartNumber])
	}
	obj := make([]byte, 0, size)
	for _, p := range parts {
		obj = append(obj, up.parts[p.PartNumber]...)
	}
	l.objects[key] = obj
	delete(l.uploads, uploadID)
	return nil
}

func (l *LocalStore) PresignGet(ctx context.Context, key string) (string, error) {
	return l.presign(http.MethodGet, key, "", 0), nil
}

func (l *LocalStore) HeadObject(ctx context.Context, key string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	obj, ok := l.objects[key]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return int64(len(obj)), nil
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (l *LocalStore) handlePut(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !l.verify(c, key) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	etag := etagOf(data)

	uploadID := c.Query("uploadId")
	l.mu.Lock()
	if uploadID == "" {
		l.objects[key] = data
	} else {
		up, ok := l.uploads[uploadID]
		if !ok || up.key != key {
			l.mu.Unlock()
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		part, _ := strconv.Atoi(c.Query("partNumber"))
		up.parts[part] = data
		up.etags[part] = etag
	}
	l.mu.Unlock()

	c.Header("ETag", `"`+etag+`"`)
	c.Status(http.StatusOK)
}

func (l *LocalStore) handleGet(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !l.verify(c, key) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	l.mu.RLock()
	data, ok := l.objects[key]
	l.mu.RUnlock()
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Header("ETag", `"`+etagOf(data)+`"`)
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
