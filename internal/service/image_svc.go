package service

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // 注册 jpg 解码器
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ==================== 配置 ====================

// ImageConfig 批量抠图配置
type ImageConfig struct {
	InputDir  string
	OutputDir string
	// Tolerance 背景色容差(每通道)，0 时用默认值
	Tolerance int
}

// ==================== 服务 ====================

// ImageService 批量去背景：逐文件处理，输出统一转 PNG 以保留透明度
// 纯文件到文件的变换，不涉及目录数据
type ImageService struct {
	Config *ImageConfig
}

// NewImageService 创建抠图服务
func NewImageService(cfg *ImageConfig) *ImageService {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 32
	}
	return &ImageService{Config: cfg}
}

// Run 递归遍历输入目录，镜像目录结构输出
func (s *ImageService) Run() error {
	processed := 0

	err := filepath.WalkDir(s.Config.InputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			return nil
		}

		rel, err := filepath.Rel(s.Config.InputDir, path)
		if err != nil {
			return err
		}

		// 输出统一改 .png 后缀
		outPath := filepath.Join(s.Config.OutputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".png")
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}

		if err := s.processFile(path, outPath); err != nil {
			return fmt.Errorf("处理 %s 失败: %w", path, err)
		}

		processed++
		log.Printf("[Image] 已处理: %s", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Image] 抠图完成，共 %d 张", processed)
	return nil
}

func (s *ImageService) processFile(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("解码图片失败: %w", err)
	}

	result := removeBackground(src, s.Config.Tolerance)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, result)
}

// ==================== 抠图实现 ====================

// removeBackground 从四角种子做洪泛填充，把和角落颜色相近且连通的区域置为透明
// 适用于摄影棚纯色背景的商品图
func removeBackground(src image.Image, tolerance int) *image.NRGBA {
	bounds := src.Bounds()
	img := image.NewNRGBA(bounds)
	draw.Draw(img, bounds, src, bounds.Min, draw.Src)

	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return img
	}

	visited := make([]bool, w*h)
	tolSq := 3 * tolerance * tolerance

	type point struct{ x, y int }
	corners := []point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}}

	var queue []point
	for _, c := range corners {
		if !visited[c.y*w+c.x] {
			visited[c.y*w+c.x] = true
			queue = append(queue, c)
		}
	}

	// 每个角可能有不同底色，按各自角的颜色做相似度判断
	cornerColors := make([]color4, len(corners))
	for i, c := range corners {
		cornerColors[i] = nrgbaAt(img, bounds, c.x, c.y)
	}

	matchesBackground := func(x, y int) bool {
		px := nrgbaAt(img, bounds, x, y)
		for _, cc := range cornerColors {
			if colorDistSq(px, cc) <= tolSq {
				return true
			}
		}
		return false
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		// 置透明
		off := img.PixOffset(bounds.Min.X+p.x, bounds.Min.Y+p.y)
		img.Pix[off+3] = 0

		for _, n := range []point{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
			if n.x < 0 || n.y < 0 || n.x >= w || n.y >= h {
				continue
			}
			if visited[n.y*w+n.x] {
				continue
			}
			if !matchesBackground(n.x, n.y) {
				continue
			}
			visited[n.y*w+n.x] = true
			queue = append(queue, n)
		}
	}

	return img
}

type color4 struct{ r, g, b int }

func nrgbaAt(img *image.NRGBA, bounds image.Rectangle, x, y int) color4 {
	off := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
	return color4{int(img.Pix[off]), int(img.Pix[off+1]), int(img.Pix[off+2])}
}

func colorDistSq(a, b color4) int {
	dr, dg, db := a.r-b.r, a.g-b.g, a.b-b.b
	return dr*dr + dg*dg + db*db
}
