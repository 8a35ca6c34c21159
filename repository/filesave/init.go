package filesave

import (
	"bibgraph-backend/utils"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"testing"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

type S3Config struct {
	URL    string
	Region string
	Bucket string
	Key    string
	Secret string
}

type Config struct {
	Backend   string
	LocalDir  string
	S3        S3Config
	KeyPrefix string
}

func GenerateTestConfig(t testing.TB) *Config {
	return &Config{
		Backend:   BackendLocal,
		LocalDir:  t.TempDir(),
		KeyPrefix: "runs",
	}
}

var ErrFileNotFound = errors.New("file not found")

/*
Store 是产物存储，按键保存和读取完整文件。键使用 "/" 分隔。
*/
type Store interface {
	Put(ctx context.Context, key string, data []byte) (url string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
}

func CreateStore(config *Config) (Store, error) {
	switch config.Backend {
	case BackendLocal, "":
		return NewLocalStore(config.LocalDir)
	case BackendS3:
		return NewS3Store(&config.S3)
	}
	return nil, fmt.Errorf("unknown artifact backend [%s]", config.Backend)
}

/*
SaveFileResp 描述一个已保存的文件。

	Key 存储中的键；
	URL 存储返回的位置；
	Hash 文件内容的 MD5，十六进制；
	Type 文件扩展名，不含点；
*/
type SaveFileResp struct {
	Key  string
	URL  string
	Hash string
	Type string
	Size int
}

func (r *SaveFileResp) HashBytes() []byte {
	b, _ := hex.DecodeString(r.Hash)
	return b
}

/*
Saver 在 Store 之上加了统一的键前缀，并计算文件摘要。
*/
type Saver struct {
	store  Store
	prefix string
}

func NewSaver(store Store, prefix string) *Saver {
	return &Saver{store: store, prefix: strings.Trim(prefix, "/")}
}

func (s *Saver) key(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// SaveFile 保存到 <prefix>/<dir>/<name>。
func (s *Saver) SaveFile(ctx context.Context, dir, name string, data []byte) (SaveFileResp, error) {
	key := s.key(dir, name)

	url, err := s.store.Put(ctx, key, data)
	if err != nil {
		return SaveFileResp{}, utils.WrapErrorf(err, "put [%s] fail", key)
	}

	sum := md5.Sum(data)
	typ := strings.TrimPrefix(path.Ext(name), ".")

	return SaveFileResp{
		Key:  key,
		URL:  url,
		Hash: hex.EncodeToString(sum[:]),
		Type: typ,
		Size: len(data),
	}, nil
}

// LoadFile 读取 SaveFile 返回的 Key。
func (s *Saver) LoadFile(ctx context.Context, key string) ([]byte, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, utils.WrapErrorf(err, "get [%s] fail", key)
	}
	return data, nil
}

var saver *Saver

func Init(config *Config) {
	store, err := CreateStore(config)
	if err != nil {
		panic(err)
	}

	saver = NewSaver(store, config.KeyPrefix)
}

func Default() *Saver {
	return saver
}
