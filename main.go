package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Flagro/llm-excel-table-finder/ai"
	"github.com/Flagro/llm-excel-table-finder/excel"
	"github.com/Flagro/llm-excel-table-finder/export"
	"github.com/Flagro/llm-excel-table-finder/models"
)

var (
	flagSheets         []string
	flagCSV            bool
	flagOutput         string
	flagIncludeHeaders bool
	flagModel          string
)

var rootCmd = &cobra.Command{
	Use:   "table-finder FILE",
	Short: "Locate tables in spreadsheet files using an LLM agent",
	Long: `table-finder opens a spreadsheet (.xlsx, .xlsm, .xls, or .xlsb), lets an
LLM agent explore it through cell-access tools, and reports the table
ranges it finds as JSON or exports them as CSV files.`,
	Args:         cobra.ExactArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringArrayVarP(&flagSheets, "sheet", "s", nil, "sheet to analyze (repeatable; default: all sheets)")
	rootCmd.Flags().BoolVar(&flagCSV, "csv", false, "export found tables as CSV files (implies header extraction)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path for --csv (default: table_<sheet>_<N>.csv per table)")
	rootCmd.Flags().BoolVar(&flagIncludeHeaders, "include-headers", false, "extract header rows separately from data")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "model name (default from LLM_MODEL env or gpt-4o-mini)")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	config := models.DefaultAIConfig()
	if flagModel != "" {
		config.OpenAIModel = flagModel
	}
	if config.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	reader, err := excel.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	finder, err := ai.NewTableFinder(reader, config, flagSheets)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// CSV export needs header rows to label columns, so it always runs
	// the header-extracting variant.
	if flagCSV || flagIncludeHeaders {
		result, err := finder.FindTablesWithHeaders(ctx)
		if err != nil {
			return err
		}
		if flagCSV {
			paths, err := export.WriteTables(reader, result.Tables, flagOutput)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		}
		return printJSON(result)
	}

	result, err := finder.FindTables(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
