// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/faiver-90/converter-photo/internal/config"
	"github.com/faiver-90/converter-photo/internal/converter"
	"github.com/faiver-90/converter-photo/internal/progress"
	"github.com/faiver-90/converter-photo/internal/scanner"
	"github.com/faiver-90/converter-photo/internal/storage"
	"github.com/faiver-90/converter-photo/internal/watcher"
	"github.com/faiver-90/converter-photo/internal/worker"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// cfg содержит глобальную конфигурацию.
var cfg = config.DefaultConfig()

// Пути и имена, задаваемые флагами отдельно от cfg.
var (
	configPath     string
	presetName     string
	savePresetName string
	loadPresetName string
)

// NewRootCmd создаёт корневую команду CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "converter-photo",
		Short: "Утилита для массовой конвертации фотографий в JPEG",
		Long: `converter-photo - CLI утилита для массовой конвертации фотографий в JPEG.

Каждое изображение поворачивается по EXIF-ориентации, уменьшается до максимальной
стороны и сжимается подбором качества до заданного лимита размера файла.
Дерево директорий обрабатывается параллельно, ошибки отдельных файлов
не прерывают обработку остальных.

Примеры:
  # Конвертировать с лимитами по умолчанию (сторона 2990, файл до 10 МБ)
  converter-photo --in ./photos --out ./converted

  # Свои лимиты и плоская структура на выходе
  converter-photo --in ./photos --out ./converted --max-side 1920 --max-mb 2 --keep-tree=false

  # Встроенный профиль для веба
  converter-photo --in ./photos --out ./web --preset web

  # Режим слежения: конвертировать новые файлы по мере появления
  converter-photo --in ./inbox --out ./converted --watch

  # Dry run (симуляция без реальной конвертации)
  converter-photo --in ./photos --out ./converted --dry-run`,
		RunE: runConvert,
	}

	// Флаги
	flags := rootCmd.Flags()

	// Входные параметры
	flags.StringVar(&cfg.InputDir, "in", "", "Директория с исходными изображениями (обязательно)")
	flags.StringVar(&cfg.OutputDir, "out", "", "Директория для сохранения результатов (обязательно)")
	flags.StringSliceVar(&cfg.InputExtensions, "in-ext", cfg.InputExtensions,
		"Расширения входных файлов через запятую (например: jpg,png,webp)")

	// Лимиты
	flags.IntVar(&cfg.MaxSide, "max-side", cfg.MaxSide, "Максимальная сторона изображения в пикселях")
	flags.IntVar(&cfg.MaxMB, "max-mb", cfg.MaxMB, "Максимальный размер выходного файла в мегабайтах")
	flags.StringVar(&presetName, "preset", "", "Встроенный профиль: web, social, print, thumbnail")

	// Режим работы
	flags.BoolVar(&cfg.KeepTree, "keep-tree", cfg.KeepTree, "Сохранять структуру директорий")
	flags.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Симуляция без реальной конвертации")
	flags.BoolVarP(&cfg.Watch, "watch", "w", cfg.Watch, "Следить за директорией и конвертировать новые файлы")

	// Производительность
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Количество параллельных воркеров")
	flags.IntVar(&cfg.MaxMemoryMB, "max-memory", cfg.MaxMemoryMB,
		"Ограничение памяти в мегабайтах (0 = без ограничения)")

	// Пути
	flags.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath,
		"Путь к SQLite журналу результатов (по умолчанию <out>/.converter-photo/journal.sqlite)")
	flags.BoolVar(&cfg.NoJournal, "no-journal", cfg.NoJournal, "Не вести журнал результатов")
	flags.StringVar(&configPath, "config", "", "Путь к YAML файлу конфигурации")

	// Именованные пресеты
	flags.StringVar(&savePresetName, "save-preset", "", "Сохранить текущие настройки как именованный пресет")
	flags.StringVar(&loadPresetName, "load-preset", "", "Загрузить именованный пресет")

	// Вывод
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Подробный вывод (строка на каждый файл)")
	flags.BoolVar(&cfg.NoProgress, "no-progress", cfg.NoProgress, "Отключить прогресс-бар")

	// Применяем файл конфигурации и пресеты до запуска
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return applyConfigSources(cmd)
	}

	// Подкоманды
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPresetsCmd())

	return rootCmd
}

// applyConfigSources применяет источники конфигурации в порядке приоритета:
// значения по умолчанию < файл конфигурации < именованный пресет <
// встроенный профиль < явно указанные флаги.
func applyConfigSources(cmd *cobra.Command) error {
	// Снимок значений после разбора флагов: явно указанные флаги
	// должны победить файл и пресеты
	flagged := *cfg

	if configPath != "" {
		fc, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		fc.Apply(cfg)
	}

	if loadPresetName != "" {
		fc, path, err := config.LoadPreset(loadPresetName)
		if err != nil {
			return err
		}
		fc.Apply(cfg)
		fmt.Printf("📦 Загружен пресет '%s' (%s)\n", loadPresetName, path)
	}

	if presetName != "" {
		if !cfg.ApplyPreset(presetName) {
			return fmt.Errorf("неизвестный профиль '%s' (доступны: web, social, print, thumbnail)", presetName)
		}
	}

	restoreChangedFlags(cmd, cfg, &flagged)
	return nil
}

// restoreChangedFlags возвращает значения явно указанных флагов,
// перекрытые файлом конфигурации или пресетом.
func restoreChangedFlags(cmd *cobra.Command, cfg, flagged *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("in") {
		cfg.InputDir = flagged.InputDir
	}
	if flags.Changed("out") {
		cfg.OutputDir = flagged.OutputDir
	}
	if flags.Changed("in-ext") {
		cfg.InputExtensions = flagged.InputExtensions
	}
	if flags.Changed("max-side") {
		cfg.MaxSide = flagged.MaxSide
	}
	if flags.Changed("max-mb") {
		cfg.MaxMB = flagged.MaxMB
	}
	if flags.Changed("keep-tree") {
		cfg.KeepTree = flagged.KeepTree
	}
	if flags.Changed("workers") {
		cfg.Workers = flagged.Workers
	}
	if flags.Changed("max-memory") {
		cfg.MaxMemoryMB = flagged.MaxMemoryMB
	}
	if flags.Changed("journal") {
		cfg.JournalPath = flagged.JournalPath
	}
}

// runConvert выполняет основную логику конвертации.
func runConvert(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	// Сохранение пресета: можно вызвать и без запуска конвертации
	if savePresetName != "" {
		path, err := config.SavePreset(savePresetName, cfg)
		if err != nil {
			return fmt.Errorf("не удалось сохранить пресет: %w", err)
		}
		fmt.Printf("💾 Пресет '%s' сохранён: %s\n", savePresetName, path)

		if cfg.InputDir == "" && cfg.OutputDir == "" {
			return nil
		}
	}

	// Валидация конфигурации
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Создаём контекст с обработкой сигналов
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n⚠️  Получен сигнал завершения, останавливаем...")
		cancel()
	}()

	// Инициализируем движок конвертации
	if err := converter.Startup(); err != nil {
		return fmt.Errorf("не удалось инициализировать конвертер: %w", err)
	}
	defer converter.Shutdown()

	// Журнал результатов
	var journal *storage.Storage
	if !cfg.NoJournal && !cfg.DryRun {
		var err error
		journal, err = storage.New(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("не удалось открыть журнал: %w", err)
		}
		defer func() { _ = journal.Close() }()
	}

	// Создаём сканер и считаем файлы для прогресс-бара
	scan := scanner.New(cfg)

	var total int64
	if !cfg.Watch {
		count, err := scan.CountFiles()
		if err != nil {
			return fmt.Errorf("не удалось просканировать директорию: %w", err)
		}
		if count == 0 {
			fmt.Println("📁 Подходящие файлы не найдены, нечего конвертировать.")
			return nil
		}
		total = count
	}

	// Источник файлов: разовое сканирование или сканирование + слежение
	var files <-chan scanner.File
	var scanErrs <-chan error
	if cfg.Watch {
		var err error
		files, err = watchFiles(ctx, scan)
		if err != nil {
			return err
		}
	} else {
		files, scanErrs = scan.Scan(ctx)
	}

	// Выводим параметры
	fmt.Printf("🚀 Запуск конвертации:\n")
	fmt.Printf("   Вход: %s\n", cfg.InputDir)
	fmt.Printf("   Выход: %s\n", cfg.OutputDir)
	fmt.Printf("   Лимиты: сторона до %d px, файл до %d МБ\n", cfg.MaxSide, cfg.MaxMB)
	fmt.Printf("   Воркеров: %d\n", cfg.Workers)
	if cfg.Watch {
		fmt.Println("   👀 Режим слежения (Ctrl+C для остановки)")
	}
	if cfg.DryRun {
		fmt.Println("   ⚠️  Dry-run режим (без реальной конвертации)")
	}
	fmt.Println()

	// Прогресс-бар (в режиме слежения количество неизвестно - бар отключён)
	bar := progress.New(progress.Options{
		Total:       total,
		Disabled:    cfg.NoProgress,
		Description: "Конвертация",
	})

	// Создаём пул воркеров и обрабатываем результаты
	engine := converter.New(converter.SizeBudget{
		MaxSide:  cfg.MaxSide,
		MaxBytes: cfg.MaxBytes(),
	})
	pool := worker.New(cfg, engine)

	paramsHash := cfg.OutputParamsHash()
	for outcome := range pool.Run(ctx, files) {
		bar.Increment()

		if outcome.OK() {
			if cfg.Verbose {
				bar.WriteMessage("[OK] %s → %s (q=%d, %s → %s, %s)\n",
					outcome.RelPath, outcome.DstRelPath, outcome.Quality,
					worker.FormatBytes(outcome.SrcSize), worker.FormatBytes(outcome.DstSize),
					outcome.Duration.Round(time.Millisecond))
			}
		} else {
			bar.WriteMessage("[ERR] %s: %v\n", outcome.RelPath, outcome.Err)
		}

		if journal != nil {
			if err := journal.Record(outcomeRecord(outcome, paramsHash)); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Не удалось записать в журнал: %v\n", err)
			}
		}
	}
	bar.Finish()

	// Ошибка обхода директории (не ошибки отдельных файлов)
	if scanErrs != nil {
		for err := range scanErrs {
			fmt.Fprintf(os.Stderr, "⚠️  Ошибка сканирования: %v\n", err)
		}
	}

	// Выводим результаты
	stats := pool.GetStats()
	duration := time.Since(startTime)
	fmt.Println()
	fmt.Printf("📊 Результаты:\n")
	fmt.Printf("   Обработано: %d\n", stats.Processed)
	fmt.Printf("   Ошибок: %d\n", stats.Failed)
	if stats.InputBytes > 0 {
		fmt.Printf("   Сэкономлено: %s (%.1f%%)\n",
			worker.FormatBytes(stats.SavedBytes()), stats.SavedPercent())
	}
	fmt.Printf("   Время: %s\n", duration.Round(time.Millisecond))

	if stats.Failed > 0 {
		return fmt.Errorf("завершено с %d ошибками", stats.Failed)
	}

	return nil
}

// watchFiles объединяет разовое сканирование с последующим слежением:
// сначала конвертируются уже существующие файлы, затем новые по мере появления.
func watchFiles(ctx context.Context, scan *scanner.Scanner) (<-chan scanner.File, error) {
	w, err := watcher.New(cfg)
	if err != nil {
		return nil, err
	}

	watched, err := w.Watch(ctx)
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan scanner.File, 100)
	go func() {
		defer close(out)

		scanned, errs := scan.Scan(ctx)
		for f := range scanned {
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
		for err := range errs {
			fmt.Fprintf(os.Stderr, "⚠️  Ошибка сканирования: %v\n", err)
		}

		for f := range watched {
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// outcomeRecord строит запись журнала из результата обработки.
func outcomeRecord(o worker.Outcome, paramsHash string) *storage.Record {
	rec := &storage.Record{
		SrcPath:    o.SrcPath,
		RelPath:    o.RelPath,
		SrcSize:    o.SrcSize,
		SrcMtime:   o.SrcMtime,
		ParamsHash: paramsHash,
		DurationMS: o.Duration.Milliseconds(),
		FinishedAt: time.Now().Unix(),
	}

	if o.OK() {
		rec.Status = storage.StatusOK
		rec.DstPath = o.DstRelPath
		rec.DstSize = o.DstSize
		rec.Quality = o.Quality
	} else {
		rec.Status = storage.StatusFailed
		rec.Error = o.Err.Error()
	}

	return rec
}

// newVersionCmd создаёт команду version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("converter-photo %s (built %s)\n", Version, BuildTime)
		},
	}
}

// newStatsCmd создаёт команду stats.
func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику из журнала результатов",
		RunE: func(cmd *cobra.Command, args []string) error {
			journalPath, _ := cmd.Flags().GetString("journal")
			if journalPath == "" {
				return fmt.Errorf("укажите путь к журналу через --journal")
			}

			journal, err := storage.New(journalPath)
			if err != nil {
				return fmt.Errorf("не удалось открыть журнал: %w", err)
			}
			defer func() { _ = journal.Close() }()

			stats, err := journal.GetStats()
			if err != nil {
				return fmt.Errorf("не удалось получить статистику: %w", err)
			}

			fmt.Printf("📊 Статистика журнала:\n")
			fmt.Printf("   Всего записей: %d\n", stats.Total)
			fmt.Printf("   Успешно: %d\n", stats.OK)
			fmt.Printf("   Ошибок: %d\n", stats.Failed)
			if stats.InputBytes > 0 {
				fmt.Printf("   Вход: %s, выход: %s (сэкономлено %s)\n",
					worker.FormatBytes(stats.InputBytes),
					worker.FormatBytes(stats.OutputBytes),
					worker.FormatBytes(stats.SavedBytes()))
			}

			if stats.Failed > 0 {
				failures, err := journal.RecentFailures(10)
				if err == nil && len(failures) > 0 {
					fmt.Printf("\n❌ Последние ошибки:\n")
					for _, f := range failures {
						fmt.Printf("   %s: %s\n", f.RelPath, f.Error)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().String("journal", "", "Путь к SQLite журналу результатов")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

// Execute запускает CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		// Не выводим ошибку, cobra уже вывела
		os.Exit(1)
	}
}

/*
Возможные расширения:
- Добавить команду retry для повторной обработки ошибок из журнала
- Добавить команду export для экспорта журнала в JSON
- Добавить вывод топ-5 самых тяжёлых файлов в summary
*/
