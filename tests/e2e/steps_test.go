package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
	"github.com/mrsinham/tomoslice/internal/dicom/synth"
)

// binaryPath holds the path to the compiled binary (set once in TestMain)
var binaryPath string

// testContext holds state for a single scenario
type testContext struct {
	tmpDir   string
	exitCode int
	output   string
}

// buildBinary compiles the tomoslice binary once
func buildBinary() (string, error) {
	tmpFile, err := os.CreateTemp("", "tomoslice-test-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	_ = tmpFile.Close()

	// Get the directory of this test file to find the project root
	_, thisFile, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")

	cmd := exec.Command("go", "build", "-o", tmpFile.Name(), "./cmd/tomoslice")
	cmd.Dir = projectRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build failed: %w\n%s", err, stderr.String())
	}

	return tmpFile.Name(), nil
}

// TestMain compiles the binary once before running all tests
func TestMain(m *testing.M) {
	var err error
	binaryPath, err = buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build binary: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = os.Remove(binaryPath)
	os.Exit(code)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &testContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tmpDir, err := os.MkdirTemp("", "tomoslice-e2e-*")
		if err != nil {
			return ctx, err
		}
		tc.tmpDir = tmpDir
		return ctx, nil
	})

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.tmpDir != "" {
			_ = os.RemoveAll(tc.tmpDir)
		}
		return ctx, nil
	})

	sc.Step(`^tomoslice is built$`, tc.tomosliceIsBuilt)
	sc.Step(`^a synthetic tree in "([^"]*)" with (\d+) studies of (\d+) slices$`, tc.aSyntheticTree)
	sc.Step(`^a file "([^"]*)" with view "([^"]*)", series "([^"]*)" and instance (\d+)$`, tc.aFileWithView)
	sc.Step(`^a file "([^"]*)" with view position "([^"]*)"$`, tc.aFileWithViewPosition)
	sc.Step(`^a multi-frame file "([^"]*)" with view "([^"]*)" and (\d+) frames$`, tc.aMultiFrameFile)
	sc.Step(`^a text file "([^"]*)" containing "([^"]*)"$`, tc.aTextFileContaining)
	sc.Step(`^I run tomoslice with "([^"]*)"$`, tc.iRunTomosliceWith)
	sc.Step(`^the exit code should be (\d+)$`, tc.theExitCodeShouldBe)
	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^"([^"]*)" should exist$`, tc.shouldExist)
	sc.Step(`^"([^"]*)" should not exist$`, tc.shouldNotExist)
	sc.Step(`^"([^"]*)" should contain (\d+) files$`, tc.shouldContainFiles)
	sc.Step(`^"([^"]*)" should have instance number (\d+)$`, tc.shouldHaveInstanceNumber)
}

func (tc *testContext) path(p string) string {
	return strings.ReplaceAll(p, "{tmpdir}", tc.tmpDir)
}

func (tc *testContext) tomosliceIsBuilt() error {
	if binaryPath == "" {
		return fmt.Errorf("binary not built")
	}
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		return fmt.Errorf("binary does not exist at %s", binaryPath)
	}
	return nil
}

func (tc *testContext) aSyntheticTree(root string, studies, slices int) error {
	_, err := synth.Tree(synth.TreeOptions{
		Root:    tc.path(root),
		Studies: studies,
		Series:  2,
		Slices:  slices,
		Seed:    42,
		Decoys:  true,
	})
	return err
}

// writeSlice writes a header-only file, creating its folder.
func (tc *testContext) writeSlice(p string, s synth.Slice) error {
	p = tc.path(p)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	s.NoPixels = true
	return synth.Write(p, s)
}

func (tc *testContext) aFileWithView(p, v, series string, instance int) error {
	if len(v) < 3 {
		return fmt.Errorf("view %q is not a laterality and position", v)
	}
	return tc.writeSlice(p, synth.Slice{
		Laterality:     v[:1],
		ViewPosition:   v[1:],
		SeriesUID:      series,
		SOPUID:         fmt.Sprintf("%s.%d", series, instance),
		InstanceNumber: fmt.Sprint(instance),
	})
}

func (tc *testContext) aFileWithViewPosition(p, position string) error {
	return tc.writeSlice(p, synth.Slice{ViewPosition: position, SeriesUID: "1"})
}

func (tc *testContext) aMultiFrameFile(p, v string, frames int) error {
	return tc.writeSlice(p, synth.Slice{
		Laterality:     v[:1],
		ViewPosition:   v[1:],
		SeriesUID:      "multi",
		InstanceNumber: "1",
		NumberOfFrames: fmt.Sprint(frames),
	})
}

func (tc *testContext) aTextFileContaining(p, content string) error {
	p = tc.path(p)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content+"\n"), 0644)
}

func (tc *testContext) iRunTomosliceWith(args string) error {
	argList := splitArgs(tc.path(args))

	cmd := exec.Command(binaryPath, argList...)
	cmd.Dir = tc.tmpDir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	tc.output = output.String()

	if exitErr, ok := err.(*exec.ExitError); ok {
		tc.exitCode = exitErr.ExitCode()
	} else if err != nil {
		return fmt.Errorf("failed to run command: %w", err)
	} else {
		tc.exitCode = 0
	}

	return nil
}

func (tc *testContext) theExitCodeShouldBe(expected int) error {
	if tc.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nOutput:\n%s", expected, tc.exitCode, tc.output)
	}
	return nil
}

func (tc *testContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(tc.output, expected) {
		return fmt.Errorf("output does not contain %q\nOutput:\n%s", expected, tc.output)
	}
	return nil
}

func (tc *testContext) shouldExist(p string) error {
	p = tc.path(p)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", p)
	}
	return nil
}

func (tc *testContext) shouldNotExist(p string) error {
	p = tc.path(p)
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("path should not exist: %s", p)
	}
	return nil
}

func (tc *testContext) shouldContainFiles(p string, count int) error {
	var n int
	err := filepath.WalkDir(tc.path(p), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if n != count {
		return fmt.Errorf("expected %d files in %s, found %d", count, p, n)
	}
	return nil
}

func (tc *testContext) shouldHaveInstanceNumber(p string, want int) error {
	rec, err := meta.Read(tc.path(p))
	if err != nil {
		return err
	}
	got, _ := rec.String(meta.InstanceNumber)
	if got != fmt.Sprint(want) {
		return fmt.Errorf("instance number of %s is %q, want %d", p, got, want)
	}
	return nil
}

// splitArgs splits a command line string into arguments
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false

	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
