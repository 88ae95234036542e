// Package cli содержит CLI команды приложения.
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faiver-90/converter-photo/internal/config"
)

// newPresetsCmd создаёт команду для управления пресетами.
func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Управление именованными пресетами конфигурации",
		Long: `Управление именованными пресетами конфигурации.

Пресеты хранятся в ~/.config/converter-photo/presets/ и позволяют
сохранять и загружать конфигурации для разных проектов.

Примеры:
  # Сохранить текущие настройки как пресет
  converter-photo --max-side 1920 --max-mb 2 --save-preset my-project

  # Загрузить пресет и запустить конвертацию
  converter-photo --in ./photos --out ./web --load-preset my-project

  # Список пресетов
  converter-photo presets list

  # Удалить пресет
  converter-photo presets delete my-project`,
	}

	cmd.AddCommand(newPresetsListCmd())
	cmd.AddCommand(newPresetsDeleteCmd())
	cmd.AddCommand(newPresetsShowCmd())

	return cmd
}

// newPresetsListCmd создаёт команду для списка пресетов.
func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать список сохранённых пресетов",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := config.ListPresets()
			if err != nil {
				return fmt.Errorf("ошибка получения списка пресетов: %w", err)
			}

			if len(presets) == 0 {
				fmt.Println("Пресеты не найдены.")
				fmt.Println()
				fmt.Println("Сохраните пресет командой:")
				fmt.Println("  converter-photo --max-side 1920 --max-mb 2 --save-preset my-project")
				return nil
			}

			fmt.Printf("📦 Сохранённые пресеты (%d):\n\n", len(presets))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tСТОРОНА\tЛИМИТ\tПУТЬ")
			fmt.Fprintln(w, "---\t-------\t-----\t----")

			for _, p := range presets {
				maxSide := "-"
				maxMB := "-"
				if p.Config != nil && p.Config.Limits != nil {
					if p.Config.Limits.MaxSide > 0 {
						maxSide = fmt.Sprintf("%d px", p.Config.Limits.MaxSide)
					}
					if p.Config.Limits.MaxMB > 0 {
						maxMB = fmt.Sprintf("%d МБ", p.Config.Limits.MaxMB)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, maxSide, maxMB, p.Path)
			}
			w.Flush()

			return nil
		},
	}
}

// newPresetsDeleteCmd создаёт команду для удаления пресета.
func newPresetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Удалить пресет",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !config.PresetExists(name) {
				return fmt.Errorf("пресет '%s' не найден", name)
			}

			if err := config.DeletePreset(name); err != nil {
				return fmt.Errorf("ошибка удаления пресета: %w", err)
			}

			fmt.Printf("✅ Пресет '%s' удалён\n", name)
			return nil
		},
	}
}

// newPresetsShowCmd создаёт команду для отображения пресета.
func newPresetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Показать содержимое пресета",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			fc, path, err := config.LoadPreset(name)
			if err != nil {
				return err
			}

			fmt.Printf("📦 Пресет: %s\n", name)
			fmt.Printf("📁 Путь: %s\n\n", path)

			if fc.Input != nil {
				fmt.Println("Input:")
				if fc.Input.Dir != "" {
					fmt.Printf("  dir: %s\n", fc.Input.Dir)
				}
				if len(fc.Input.Extensions) > 0 {
					fmt.Printf("  extensions: %v\n", fc.Input.Extensions)
				}
			}

			if fc.Output != nil {
				fmt.Println("Output:")
				if fc.Output.Dir != "" {
					fmt.Printf("  dir: %s\n", fc.Output.Dir)
				}
				if fc.Output.KeepTree != nil {
					fmt.Printf("  keep_tree: %v\n", *fc.Output.KeepTree)
				}
			}

			if fc.Limits != nil {
				fmt.Println("Limits:")
				if fc.Limits.MaxSide > 0 {
					fmt.Printf("  max_side: %d\n", fc.Limits.MaxSide)
				}
				if fc.Limits.MaxMB > 0 {
					fmt.Printf("  max_mb: %d\n", fc.Limits.MaxMB)
				}
				if fc.Limits.Preset != "" {
					fmt.Printf("  preset: %s\n", fc.Limits.Preset)
				}
			}

			if fc.Processing != nil {
				fmt.Println("Processing:")
				if fc.Processing.Workers > 0 {
					fmt.Printf("  workers: %d\n", fc.Processing.Workers)
				}
				if fc.Processing.MaxMemoryMB > 0 {
					fmt.Printf("  max_memory_mb: %d\n", fc.Processing.MaxMemoryMB)
				}
			}

			return nil
		},
	}
}

/*
Возможные расширения:
- Добавить команду 'presets export' для экспорта в файл
- Добавить команду 'presets import' для импорта из файла
- Добавить команду 'presets copy' для копирования пресета
*/
