package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/repository"
	"github.com/noah-isme/school-results-api/internal/service"
	"github.com/noah-isme/school-results-api/internal/workflow"
	"github.com/noah-isme/school-results-api/pkg/cache"
	"github.com/noah-isme/school-results-api/pkg/config"
	"github.com/noah-isme/school-results-api/pkg/database"
	"github.com/noah-isme/school-results-api/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "resultctl",
		Short:         "Offline tools for entering and checking exam results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(submitCmd(), rosterCmd(), gpaCmd())
	return root
}

// env bundles what the database-backed commands need.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *sqlx.DB
	redis    *redis.Client
	scale    grading.Scale
	students *service.StudentService
	results  *service.ResultService
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	scale, err := grading.ScaleByName(cfg.Grading.Scale)
	if err != nil {
		return nil, err
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Submissions must evict lookups the API has cached.
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cached lookups will expire on their own", zap.Error(err))
		redisClient = nil
	}
	lookups := service.NewCacheService(repository.NewCacheRepository(redisClient), nil, cfg.Redis.LookupTTL, logr, redisClient != nil)

	validate := validator.New()
	studentRepo := repository.NewStudentRepository(db)
	classRecords := repository.NewClassRecordRepository(db)
	resultRepo := repository.NewResultRepository(db)

	return &env{
		cfg:      cfg,
		log:      logr,
		db:       db,
		redis:    redisClient,
		scale:    scale,
		students: service.NewStudentService(studentRepo, classRecords, resultRepo, validate, logr, time.Now),
		results: service.NewResultService(classRecords, resultRepo, studentRepo, scale, nil, validate, logr, time.Now).
			WithCache(lookups, cfg.Redis.LookupTTL),
	}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	if e.redis != nil {
		_ = e.redis.Close()
	}
	_ = e.log.Sync()
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Enter a CSV marksheet (roll,subject,written,mcq) and submit it",
		RunE:  runSubmit,
	}
	f := cmd.Flags()
	f.StringP("class", "c", string(workflow.DefaultClass), "Class, e.g. Class_6")
	f.StringP("test", "t", string(workflow.DefaultExamType), "Exam type (Mid_Term, Final)")
	f.IntP("year", "y", 0, "Academic year (0 = current)")
	f.Float64("written-cap", workflow.DefaultWrittenCap, "Maximum written mark per subject")
	f.Float64("mcq-cap", workflow.DefaultMCQCap, "Maximum MCQ mark per subject")
	f.StringP("file", "f", "-", "Marksheet CSV path (- for stdin)")
	f.Bool("dry-run", false, "Print the computed entries without saving")
	return cmd
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	class, _ := f.GetString("class")
	test, _ := f.GetString("test")
	year, _ := f.GetInt("year")
	writtenCap, _ := f.GetFloat64("written-cap")
	mcqCap, _ := f.GetFloat64("mcq-cap")
	path, _ := f.GetString("file")
	dryRun, _ := f.GetBool("dry-run")

	rows, err := readMarksheet(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := workflow.New(class, test, e.scale)
	if err != nil {
		return err
	}
	if err := w.SetCaps(writtenCap, mcqCap); err != nil {
		return err
	}
	if year > 0 {
		w.SetYear(year)
	}

	roster, err := e.students.Roster(ctx, string(w.Config().ClassName), year)
	if err != nil {
		return err
	}
	w.SetRoster(roster)
	if err := w.Apply(rows); err != nil {
		return err
	}

	printEntries(cmd.OutOrStdout(), w)
	if dryRun {
		return nil
	}

	res, err := w.Submit(ctx, e.results)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}

func readMarksheet(stdin io.Reader, path string) ([]workflow.MarkRow, error) {
	if path == "" || path == "-" {
		return workflow.ReadMarksheet(stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return workflow.ReadMarksheet(file)
}

func printEntries(out io.Writer, w *workflow.Workflow) {
	subjects := w.Subjects()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ROLL\tNAME\t%s\tTOTAL\tPERCENT\n", strings.Join(subjects, "\t"))
	for _, entry := range w.Entries() {
		cells := make([]string, 0, len(subjects))
		for _, s := range subjects {
			m := entry.Marks[s]
			cells = append(cells, fmt.Sprintf("%g+%g", m.WrittenMark, m.MCQMark))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%.2f\n", entry.Student.RollNumber, entry.Student.Name, strings.Join(cells, "\t"), entry.TotalMarks, entry.Percentage)
	}
	_ = tw.Flush()
}

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List active students enrolled in a class",
		RunE: func(cmd *cobra.Command, _ []string) error {
			class, _ := cmd.Flags().GetString("class")
			year, _ := cmd.Flags().GetInt("year")

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			roster, err := e.students.Roster(cmd.Context(), class, year)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLL\tNAME\tSTATUS\tSTUDENT ID")
			for _, r := range roster {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.RollNumber, r.Name, r.Status, r.StudentID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringP("class", "c", string(workflow.DefaultClass), "Class, e.g. Class_6")
	cmd.Flags().IntP("year", "y", 0, "Academic year (0 = current)")
	return cmd
}

func gpaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpa SUBJECT=LETTER...",
		Short: "Compute GPA and overall grade from subject letter grades",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("scale")
			scale, err := grading.ScaleByName(name)
			if err != nil {
				return err
			}
			grades, err := parseGrades(args)
			if err != nil {
				return err
			}
			summary := scale.Summarize(grades)
			fmt.Fprintf(cmd.OutOrStdout(), "GPA %.2f  Grade %s\n", summary.GPA, summary.Grade)
			return nil
		},
	}
	cmd.Flags().StringP("scale", "s", grading.StandardScale.Name, "Grading scale (standard, board)")
	return cmd
}

func parseGrades(args []string) (map[string]string, error) {
	grades := make(map[string]string, len(args))
	for _, arg := range args {
		subject, letter, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(subject) == "" {
			return nil, fmt.Errorf("expected SUBJECT=LETTER, got %q", arg)
		}
		grades[strings.TrimSpace(subject)] = strings.ToUpper(strings.TrimSpace(letter))
	}
	return grades, nil
}
