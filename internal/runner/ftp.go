package runner

import (
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/exportcfg"
	"github.com/scriptor-pro/ernest-export/internal/model"
)

const (
	dialTimeout   = 30 * time.Second
	sftpChunkSize = 32 * 1024
)

// errAuthFailed means no authentication method succeeded. When no password
// was stored either, the caller maps this to the retryable missing-password
// code so the UI can prompt and retry.
var errAuthFailed = errors.New("ssh auth failed")

// envFtpPassword is a plain-FTP fallback for headless use.
const envFtpPassword = "ERNEST_FTP_PASSWORD"

// FtpRunner uploads one file over SFTP (default) or plain FTP. SFTP streams
// byte-level progress from its own copy loop; plain FTP streams it through a
// reader wrapper handed to the transport.
type FtpRunner struct {
	ProjectRoot string
	Profile     *string
	Resolved    *exportcfg.ResolvedFtp
	Creds       credentials.Store
	Interval    time.Duration
}

func (r *FtpRunner) Run(filePath string, cancel *CancelFlag, progress Sink) model.ExportResponse {
	var logs model.Logs

	if cancel.Cancelled() {
		return model.CancelledResponse(logs)
	}

	stored, found, err := r.Creds.Get(r.ProjectRoot, model.TargetFtp, r.Profile, model.CredentialPassword)
	if err != nil {
		return model.ErrorResponse(model.CodeFtpFailed, "Unable to access credential storage", err.Error(), logs)
	}

	username := resolveUsername(r.Resolved.Username)
	if username == "" {
		return model.ErrorResponse(model.CodeFtpMissingUsername, "FTP username is missing", "", logs)
	}

	remotePath := resolveRemotePath(r.Resolved.RemotePath, filePath)

	fi, err := os.Stat(filePath)
	if err != nil {
		return model.ErrorResponse(model.CodeFtpFailed, "Unable to read file metadata", err.Error(), logs)
	}
	totalBytes := fi.Size()
	sink := Throttled(progress, r.Interval)

	switch r.Resolved.Protocol {
	case exportcfg.ProtocolSftp:
		logs.Info("Connecting via SFTP", r.Resolved.Host)
		err := r.uploadSFTP(filePath, remotePath, username, stored, found, totalBytes, cancel, sink)
		switch {
		case err == nil:
			return model.OkResponse("SFTP export completed", logs)
		case errors.Is(err, errCancelled):
			return model.CancelledResponse(logs)
		case errors.Is(err, errAuthFailed) && !found:
			return model.ErrorResponse(model.CodeFtpMissingPassword,
				"SFTP password missing (set in app or use SSH agent)", "", logs)
		default:
			return model.ErrorResponse(model.CodeFtpFailed, "SFTP export failed", err.Error(), logs)
		}

	default: // plain ftp
		password := stored
		if !found {
			password = os.Getenv(envFtpPassword)
		}
		if password == "" {
			return model.ErrorResponse(model.CodeFtpMissingPassword, "FTP password missing (set in app)", "", logs)
		}
		logs.Info("Connecting via FTP", r.Resolved.Host)
		err := r.uploadFTP(filePath, remotePath, username, password, totalBytes, cancel, sink)
		switch {
		case err == nil:
			return model.OkResponse("FTP export completed", logs)
		case errors.Is(err, errCancelled):
			return model.CancelledResponse(logs)
		default:
			return model.ErrorResponse(model.CodeFtpFailed, "FTP export failed", err.Error(), logs)
		}
	}
}

func (r *FtpRunner) uploadSFTP(
	localPath, remotePath, username, password string,
	havePassword bool,
	totalBytes int64,
	cancel *CancelFlag,
	sink Sink,
) error {
	var methods []ssh.AuthMethod
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			defer conn.Close()
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	if havePassword {
		methods = append(methods, ssh.Password(password))
	}
	if len(methods) == 0 {
		return errAuthFailed
	}

	config := &ssh.ClientConfig{
		User:            username,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}
	addr := net.JoinHostPort(r.Resolved.Host, strconv.Itoa(r.Resolved.Port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return errAuthFailed
		}
		return err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return err
	}
	defer sftpClient.Close()

	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return err
	}
	defer remote.Close()

	local, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer local.Close()

	buf := make([]byte, sftpChunkSize)
	var sent int64
	for {
		if cancel.Cancelled() {
			return errCancelled
		}
		n, readErr := local.Read(buf)
		if n > 0 {
			if _, writeErr := remote.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			sent += int64(n)
			sink(sent, totalBytes)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func (r *FtpRunner) uploadFTP(
	localPath, remotePath, username, password string,
	totalBytes int64,
	cancel *CancelFlag,
	sink Sink,
) error {
	addr := net.JoinHostPort(r.Resolved.Host, strconv.Itoa(r.Resolved.Port))
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(dialTimeout))
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Login(username, password); err != nil {
		return err
	}

	local, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer local.Close()

	reader := &progressReader{src: local, total: totalBytes, cancel: cancel, sink: sink}
	if err := conn.Stor(remotePath, reader); err != nil {
		if cancel.Cancelled() {
			return errCancelled
		}
		return err
	}
	return nil
}

func resolveUsername(value string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return os.Getenv("USER")
}

// resolveRemotePath appends the local file name when the configured remote
// path is a directory (trailing slash).
func resolveRemotePath(remotePath, filePath string) string {
	if strings.HasSuffix(remotePath, "/") {
		return remotePath + filepath.Base(filePath)
	}
	return remotePath
}
