package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/tartampluch/go-birthday-web/internal/credentials"
	"github.com/tartampluch/go-birthday-web/internal/engine"
	"github.com/tartampluch/go-birthday-web/internal/locale"
	"github.com/tartampluch/go-birthday-web/internal/metrics"
	"github.com/tartampluch/go-birthday-web/internal/server"
)

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string) int {
	settings, err := config.ParseFlags(filepath.Base(os.Args[0]), args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeUsage
	}

	if settings.ShowVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	if settings.SetPassword {
		if err := storePassword(settings.AuthorsUser, os.Stdin, os.Stderr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return config.ExitCodeError
		}
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(settings.Debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// Root context cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, settings); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires dependencies and serves HTTP until ctx is cancelled.
func run(ctx context.Context, settings config.Settings) error {
	password, err := credentials.Password(settings.AuthorsUser)
	if err != nil {
		return err
	}

	directory, err := engine.LoadDirectory(ctx, engine.DirectorySource{
		LocalPath: settings.AuthorsFile,
		WebURL:    settings.AuthorsURL,
		WebUser:   settings.AuthorsUser,
		WebPass:   password,
	}, engine.NewHTTPFetcher())
	if err != nil {
		return err
	}

	translator, err := locale.New(settings.Language)
	if err != nil {
		return err
	}
	slog.Info(config.MsgLocalesReady,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyLangs, translator.Languages(),
	)

	srv, err := server.New(settings.Addr(), server.Deps{
		Clock:      engine.RealClock{},
		Directory:  directory,
		Translator: translator,
		Metrics:    metrics.New(),
		Logger:     slog.Default(),
	})
	if err != nil {
		return err
	}

	return srv.Start(ctx)
}

// storePassword reads one line from in and saves it as the keyring password of user.
func storePassword(user string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, config.MsgPasswordPrompt, user)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		err := scanner.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
	}

	if err := credentials.SetPassword(user, strings.TrimRight(scanner.Text(), "\r")); err != nil {
		return err
	}
	fmt.Fprintln(out, config.MsgPasswordStored)
	return nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to stdout and, when
// possible, a log file in the user's cache directory.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
