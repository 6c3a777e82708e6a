// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的预设文件。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotInitialized Init 之前访问资源
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	mu     sync.RWMutex
	dataFS fs.FS
)

// Init 设置资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用。
// 参数可以是 embed.FS，也可以是测试用的 fstest.MapFS 或 os.DirFS
func Init(data fs.FS) {
	mu.Lock()
	defer mu.Unlock()
	dataFS = data
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dataFS != nil
}

// resolve 标准化路径并返回文件系统
// 路径必须以 "data/" 开头
func resolve(path string) (fs.FS, string, error) {
	mu.RLock()
	fsys := dataFS
	mu.RUnlock()
	if fsys == nil {
		return nil, "", ErrNotInitialized
	}

	// 标准化路径分隔符为正斜杠（embed.FS 使用正斜杠），移除 "./" 前缀
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if path != "data" && !strings.HasPrefix(path, "data/") {
		return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return fsys, path, nil
}

// ReadFile 读取文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, path, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, path)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	fsys, path, err := resolve(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(fsys, path)
	return err == nil
}

// Glob 匹配文件，结果按字典序排列
func Glob(pattern string) ([]string, error) {
	fsys, pattern, err := resolve(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, pattern)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, path, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, path)
}
