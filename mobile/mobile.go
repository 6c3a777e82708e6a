//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包，
// 仅在使用 -tags mobile 构建时编译：
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.partigon -o build/android/partigon.aar -v ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Partigon.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/gonewx/partigon/pkg/app"
	"github.com/gonewx/partigon/pkg/embedded"
)

func init() {
	embedded.Init(dataFS)

	viewer, err := app.NewApp(app.Config{Verbose: true, AutoPlay: true})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}
	mobile.SetGame(viewer)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
