package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel_cms/internal/domain"
)

// Blobs keeps uploads in a GridFS bucket next to the content.
type Blobs struct{ b *gridfs.Bucket }

func NewBlobs(db *mongo.Database) (*Blobs, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("uploads"))
	if err != nil {
		return nil, err
	}
	return &Blobs{b: b}, nil
}

type fileDoc struct {
	ID       string `bson:"_id"`
	Length   int64  `bson:"length"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *Blobs) Put(ctx context.Context, id, contentType string, r io.Reader) (domain.BlobInfo, error) {
	cr := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if err := s.b.UploadFromStreamWithID(id, id, cr, opts); err != nil {
		return domain.BlobInfo{}, fmt.Errorf("gridfs upload %s: %w", id, err)
	}
	return domain.BlobInfo{ID: id, ContentType: contentType, Size: cr.n}, nil
}

func (s *Blobs) Stat(ctx context.Context, id string) (domain.BlobInfo, error) {
	cur, err := s.b.Find(bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return domain.BlobInfo{}, err
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return domain.BlobInfo{}, err
		}
		return domain.BlobInfo{}, domain.ErrNotFound
	}
	var f fileDoc
	if err := cur.Decode(&f); err != nil {
		return domain.BlobInfo{}, err
	}
	return domain.BlobInfo{ID: f.ID, ContentType: f.Metadata.ContentType, Size: f.Length}, nil
}

func (s *Blobs) Open(ctx context.Context, id string) (io.ReadCloser, domain.BlobInfo, error) {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	ds, err := s.b.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.BlobInfo{}, domain.ErrNotFound
		}
		return nil, domain.BlobInfo{}, err
	}
	return ds, info, nil
}

func (s *Blobs) Delete(ctx context.Context, id string) error {
	if err := s.b.Delete(id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
