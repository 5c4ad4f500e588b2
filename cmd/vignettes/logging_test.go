package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdirTemp runs the test from an empty directory so logs/ never touches the tree
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		os.Chdir(wd)
	})
}

func TestSetupLoggingDiscardsWithoutDebug(t *testing.T) {
	chdirTemp(t)

	if f := setupLogging(false); f != nil {
		f.Close()
		t.Fatal("no log file expected without -debug")
	}
	if log.Writer() != io.Discard {
		t.Errorf("log writer = %v, want io.Discard", log.Writer())
	}
	if _, err := os.Stat(logDir); !os.IsNotExist(err) {
		t.Error("log directory created without -debug")
	}
}

func TestSetupLoggingWritesFile(t *testing.T) {
	chdirTemp(t)

	f := setupLogging(true)
	if f == nil {
		t.Fatal("log file expected with -debug")
	}
	defer f.Close()

	if w := log.Writer(); w == os.Stdout || w == os.Stderr {
		t.Fatal("log output must stay off the terminal")
	}
	log.Printf("vignette birthday: set-up->active")

	data, err := os.ReadFile(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "set-up->active") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestSetupLoggingRotatesLargeFile(t *testing.T) {
	chdirTemp(t)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	logPath := filepath.Join(logDir, logFileName)
	if err := os.WriteFile(logPath, make([]byte, maxLogSize+1), 0644); err != nil {
		t.Fatalf("seed large log: %v", err)
	}

	f := setupLogging(true)
	if f == nil {
		t.Fatal("log file expected after rotation")
	}
	defer f.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("log dir has %d entries, want current plus rotated", len(entries))
	}
	if info, err := os.Stat(logPath); err != nil || info.Size() > maxLogSize {
		t.Errorf("current log not fresh after rotation: %v", err)
	}
}
