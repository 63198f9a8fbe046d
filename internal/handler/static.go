package handler

import (
	"net/http"
	"os"
)

// noListingFS はディレクトリへのアクセスを拒否し、ファイルのみを公開するファイルシステム。
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// staticFiles はdirの内容をprefix配下で読み取り専用に配信するハンドラーを返す。
func staticFiles(prefix, dir string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(noListingFS{fs: http.Dir(dir)}))
}
