// Package upload は商品画像のmultipartアップロードを受け付け、ディスクに保存する。
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxFieldSize はテキストフィールド1件あたりの最大バイト数。
const maxFieldSize = 1 << 20

// ErrTooLarge はファイルがサイズ上限を超えたことを表す。
var ErrTooLarge = errors.New("file too large")

// Kind はアップロード失敗の種別。
type Kind int

const (
	// KindMissing は必須ファイルが添付されていないことを表す。
	KindMissing Kind = iota + 1
	// KindUnsupportedType は許可されていないMIMEタイプを表す。
	KindUnsupportedType
	// KindStorageFault はサイズ超過または保存失敗を表す。
	KindStorageFault
)

// Error はアップロード失敗を表す。
type Error struct {
	Kind Kind
	Err  error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap は元のエラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// StoredFile は保存済みのアップロードファイル。
type StoredFile struct {
	// Path は公開パス基準の相対パス（例: "uploads/<uuid>_photo.png"）。レコードに埋め込む値。
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

// Config はUploaderの設定。
type Config struct {
	Dir          string   // 保存先ディレクトリ
	PublicPrefix string   // 保存パスの先頭に付与する公開パス（例: "uploads"）
	Field        string   // ファイルを受け付けるフィールド名
	MaxSize      int64    // ファイル1件あたりの最大バイト数
	AllowedTypes []string // 許可するMIMEタイプ
}

// Uploader はmultipartリクエストから単一の画像ファイルを取り出して保存する。
type Uploader struct {
	cfg     Config
	allowed map[string]bool
}

// NewUploader はUploaderを生成する。
func NewUploader(cfg Config) *Uploader {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	cfg.PublicPrefix = strings.Trim(cfg.PublicPrefix, "/")
	return &Uploader{cfg: cfg, allowed: allowed}
}

// Field はファイルを受け付けるフィールド名を返す。
func (u *Uploader) Field() string {
	return u.cfg.Field
}

// Dir は保存先ディレクトリを返す。
func (u *Uploader) Dir() string {
	return u.cfg.Dir
}

// MaxSize はファイル1件あたりの最大バイト数を返す。
func (u *Uploader) MaxSize() int64 {
	return u.cfg.MaxSize
}

// Accept はリクエストボディを読み取り、指定フィールドのファイルを保存する。
// ファイル以外のテキストフィールドは戻り値のmapに格納する。
// 失敗時は*Errorを返し、途中まで保存したファイルは削除する。
func (u *Uploader) Accept(r *http.Request) (*StoredFile, map[string]string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, newError(KindMissing, "%s is required", u.cfg.Field)
	}

	fields := make(map[string]string)
	var stored *StoredFile

	fail := func(e *Error) (*StoredFile, map[string]string, error) {
		if stored != nil {
			_ = u.Remove(stored.Path)
		}
		return nil, nil, e
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(newError(KindStorageFault, "failed to read multipart body: %w", err))
		}

		switch {
		case part.FileName() == "":
			var buf bytes.Buffer
			n, err := io.Copy(&buf, io.LimitReader(part, maxFieldSize+1))
			if err != nil {
				part.Close()
				return fail(newError(KindStorageFault, "failed to read field %q: %w", part.FormName(), err))
			}
			if n > maxFieldSize {
				part.Close()
				return fail(newError(KindStorageFault, "field %q is too large", part.FormName()))
			}
			if _, exists := fields[part.FormName()]; !exists {
				fields[part.FormName()] = buf.String()
			}

		case part.FormName() == u.cfg.Field && stored == nil:
			ct := part.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || !u.allowed[strings.ToLower(mediaType)] {
				part.Close()
				return fail(newError(KindUnsupportedType, "content type %q is not allowed", ct))
			}

			f, serr := u.store(part, part.FileName(), mediaType)
			if serr != nil {
				part.Close()
				return fail(serr)
			}
			stored = f
		}
		// 対象外のファイルパートは読み捨てる
		part.Close()
	}

	if stored == nil {
		return nil, nil, newError(KindMissing, "%s is required", u.cfg.Field)
	}
	return stored, fields, nil
}

// store はパートの内容を "<uuid>_<元ファイル名>" として保存する。
func (u *Uploader) store(src io.Reader, originalName, contentType string) (*StoredFile, *Error) {
	if err := os.MkdirAll(u.cfg.Dir, 0o755); err != nil {
		return nil, newError(KindStorageFault, "failed to create upload directory: %w", err)
	}

	base := safeBaseName(originalName)
	name := uuid.NewString() + "_" + base
	dst := filepath.Join(u.cfg.Dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, newError(KindStorageFault, "failed to create file: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(src, u.cfg.MaxSize+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(dst)
		return nil, newError(KindStorageFault, "failed to write file: %w", copyErr)
	case n > u.cfg.MaxSize:
		os.Remove(dst)
		return nil, newError(KindStorageFault, "%w: maximum is %d bytes", ErrTooLarge, u.cfg.MaxSize)
	case closeErr != nil:
		os.Remove(dst)
		return nil, newError(KindStorageFault, "failed to close file: %w", closeErr)
	}

	return &StoredFile{
		Path:         u.publicPath(name),
		OriginalName: base,
		ContentType:  contentType,
		Size:         n,
	}, nil
}

func (u *Uploader) publicPath(name string) string {
	if u.cfg.PublicPrefix == "" {
		return name
	}
	return u.cfg.PublicPrefix + "/" + name
}

// Remove は保存パスに対応するファイルを削除する。
// パスのディレクトリ部分は無視し、保存先ディレクトリ直下のみを対象とする。
func (u *Uploader) Remove(storedPath string) error {
	name := path.Base(filepath.ToSlash(storedPath))
	if name == "." || name == "/" || name == ".." {
		return fmt.Errorf("invalid stored path: %q", storedPath)
	}
	err := os.Remove(filepath.Join(u.cfg.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// FileName は保存パスからディスク上のファイル名を取り出す。
func FileName(storedPath string) string {
	return path.Base(filepath.ToSlash(storedPath))
}

// safeBaseName はクライアント指定のファイル名からディレクトリ成分と制御文字を除去する。
func safeBaseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	if r := []rune(name); len(r) > 100 {
		name = string(r[len(r)-100:])
	}
	return name
}
