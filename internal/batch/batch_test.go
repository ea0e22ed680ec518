package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/UnendingLoop/ImageResizer/internal/config"
	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/UnendingLoop/ImageResizer/internal/service"
	"github.com/UnendingLoop/ImageResizer/internal/storage/localstorage"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		// webp и прочее пишем как png - декодер определяет формат по содержимому
		format = imaging.PNG
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, imaging.Encode(f, img, format))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			require.NoError(t, err)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func newService(t *testing.T) *service.ImageService {
	t.Helper()

	svc, err := service.NewImageService(localstorage.New(), config.Encoding{Filter: "lanczos", JPEGQuality: 90, WebPQuality: 80})
	require.NoError(t, err)
	return svc
}

var red = color.NRGBA{R: 255, A: 255}

func TestWalker_Run_FiltersByExtension(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	writeImage(t, filepath.Join(in, "a.jpg"), 40, 30, red)
	writeImage(t, filepath.Join(in, "sub", "B.PNG"), 50, 20, red)
	writeImage(t, filepath.Join(in, "sub", "deep", "c.jpeg"), 10, 10, red)
	writeImage(t, filepath.Join(in, "d.gif"), 10, 10, red)
	writeFile(t, filepath.Join(in, "notes.txt"), "hello")

	rep, err := NewWalker(newService(t), Options{}).Run(context.Background(), in, out, 16, 12)
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)
	require.Equal(t, 3, rep.Processed)
	require.Equal(t, 0, rep.Failed)

	require.Equal(t, []string{"B.PNG", "a.jpg", "c.jpeg"}, listFiles(t, out))
	for _, name := range []string{"B.PNG", "a.jpg", "c.jpeg"} {
		img, err := imaging.Open(filepath.Join(out, name))
		require.NoError(t, err)
		require.Equal(t, 16, img.Bounds().Dx())
		require.Equal(t, 12, img.Bounds().Dy())
	}
}

func TestWalker_Run_CreatesOutputDir(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "not", "yet", "there")
	writeImage(t, filepath.Join(in, "a.png"), 20, 20, red)

	rep, err := NewWalker(newService(t), Options{}).Run(context.Background(), in, out, 5, 5)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Processed)
	require.Equal(t, []string{"a.png"}, listFiles(t, out))
}

func TestWalker_Run_CorruptFileIsolated(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeImage(t, filepath.Join(in, "1.png"), 20, 20, red)
	writeFile(t, filepath.Join(in, "2.png"), "definitely not a png")
	writeImage(t, filepath.Join(in, "3.jpg"), 20, 20, red)
	writeImage(t, filepath.Join(in, "4.webp"), 20, 20, red)

	var lines []string
	opts := Options{OnResult: func(res model.Result) { lines = append(lines, res.String()) }}

	rep, err := NewWalker(newService(t), opts).Run(context.Background(), in, out, 8, 8)
	require.NoError(t, err)
	require.Equal(t, 3, rep.Processed)
	require.Equal(t, 1, rep.Failed)
	require.Len(t, lines, 4)

	failed := rep.Results[1]
	require.Equal(t, model.StatusFailed, failed.Status)
	require.Equal(t, filepath.Join(in, "2.png"), failed.Task.Source)
	require.Contains(t, lines[1], "resize failed for path "+filepath.Join(in, "2.png"))

	require.Equal(t, []string{"1.png", "3.jpg", "4.webp"}, listFiles(t, out))
}

func TestWalker_Run_BasenameCollision(t *testing.T) {
	in := t.TempDir()
	writeImage(t, filepath.Join(in, "x", "same.png"), 20, 20, red)
	writeImage(t, filepath.Join(in, "y", "same.png"), 30, 30, color.NRGBA{B: 255, A: 255})

	t.Run("flat output keeps last write", func(t *testing.T) {
		out := t.TempDir()
		rep, err := NewWalker(newService(t), Options{}).Run(context.Background(), in, out, 4, 4)
		require.NoError(t, err)
		require.Equal(t, 2, rep.Processed)
		require.Equal(t, []string{"same.png"}, listFiles(t, out))

		// y/ обходится после x/ - в выходе остается синий
		img, err := imaging.Open(filepath.Join(out, "same.png"))
		require.NoError(t, err)
		c := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
		require.Equal(t, uint8(255), c.B)
		require.Equal(t, uint8(0), c.R)
	})

	t.Run("preserve tree keeps both", func(t *testing.T) {
		out := t.TempDir()
		rep, err := NewWalker(newService(t), Options{PreserveTree: true}).Run(context.Background(), in, out, 4, 4)
		require.NoError(t, err)
		require.Equal(t, 2, rep.Processed)
		require.Equal(t, []string{"x/same.png", "y/same.png"}, listFiles(t, out))
	})
}

func TestWalker_Run_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing input dir", func(t *testing.T) {
		_, err := NewWalker(newService(t), Options{}).Run(ctx, filepath.Join(t.TempDir(), "nope"), t.TempDir(), 4, 4)
		var opErr *model.OperationError
		require.ErrorAs(t, err, &opErr)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("input is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.png")
		writeImage(t, file, 4, 4, red)
		_, err := NewWalker(newService(t), Options{}).Run(ctx, file, t.TempDir(), 4, 4)
		require.ErrorIs(t, err, model.ErrNotADirectory)
	})

	t.Run("output dir cannot be created", func(t *testing.T) {
		proc := &mockProcessor{
			prepareFn: func(ctx context.Context, dir string) error { return errors.New("read-only fs") },
		}
		_, err := NewWalker(proc, Options{}).Run(ctx, t.TempDir(), "out", 4, 4)
		require.Error(t, err)
		require.Contains(t, err.Error(), "resize failed for path out: read-only fs")
	})
}

func TestWalker_Run_SequentialOrder(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"c.png", "a.png", "b/z.jpg", "b/a.webp"} {
		writeFile(t, filepath.Join(in, name), "x")
	}

	var seen []string
	proc := &mockProcessor{
		resizeFn: func(ctx context.Context, task model.FileTask) model.Result {
			seen = append(seen, task.Source)
			return model.Result{Task: task, Status: model.StatusDone}
		},
	}

	rep, err := NewWalker(proc, Options{Workers: 1}).Run(context.Background(), in, "out", 1, 1)
	require.NoError(t, err)
	require.Equal(t, 4, rep.Processed)

	want := []string{
		filepath.Join(in, "a.png"),
		filepath.Join(in, "b", "a.webp"),
		filepath.Join(in, "b", "z.jpg"),
		filepath.Join(in, "c.png"),
	}
	require.Equal(t, want, seen)
	for i, res := range rep.Results {
		require.Equal(t, want[i], res.Task.Source)
	}
}

func TestWalker_Run_Parallel(t *testing.T) {
	in := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(in, string(rune('a'+i))+".png"), "x")
	}

	var (
		inFlight, maxInFlight atomic.Int32
		mu                    sync.Mutex
		calls                 int
	)
	proc := &mockProcessor{
		resizeFn: func(ctx context.Context, task model.FileTask) model.Result {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			mu.Lock()
			calls++
			mu.Unlock()
			return model.Result{Task: task, Status: model.StatusDone}
		},
	}

	var printed atomic.Int32
	opts := Options{Workers: 3, OnResult: func(model.Result) { printed.Add(1) }}

	rep, err := NewWalker(proc, opts).Run(context.Background(), in, "out", 1, 1)
	require.NoError(t, err)
	require.Equal(t, 12, rep.Processed)
	require.Equal(t, 12, calls)
	require.Equal(t, int32(12), printed.Load())
	require.LessOrEqual(t, maxInFlight.Load(), int32(3))

	for i, res := range rep.Results {
		require.Equal(t, filepath.Join(in, string(rune('a'+i))+".png"), res.Task.Source)
	}
}

func TestWalker_Run_Canceled(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		writeFile(t, filepath.Join(in, name), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := &mockProcessor{
		resizeFn: func(_ context.Context, task model.FileTask) model.Result {
			cancel()
			return model.Result{Task: task, Status: model.StatusDone}
		},
	}

	rep, err := NewWalker(proc, Options{}).Run(ctx, in, "out", 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Processed)
	require.Equal(t, 2, rep.Skipped)
	require.Equal(t, "Batch finished: 1 resized, 0 failed, 2 skipped", rep.Summary())
}

func TestWalker_Collect(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "top.JPG"), "x")
	writeFile(t, filepath.Join(in, "nested", "inner.png"), "x")
	writeFile(t, filepath.Join(in, "nested", "skip.bmp"), "x")

	tasks, err := NewWalker(nil, Options{PreserveTree: true}).Collect(context.Background(), in, "out", 7, 9)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.Equal(t, model.FileTask{
		Operation:   model.OpResize,
		Source:      filepath.Join(in, "nested", "inner.png"),
		Destination: filepath.Join("out", "nested", "inner.png"),
		Width:       7,
		Height:      9,
	}, tasks[0])
	require.Equal(t, filepath.Join("out", "top.JPG"), tasks[1].Destination)
}

func TestReport_Summary(t *testing.T) {
	rep := &Report{Processed: 3, Failed: 1}
	require.Equal(t, "Batch finished: 3 resized, 1 failed", rep.Summary())
}
