package ssh

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/williamokano/docdeploy/pkg/sshconn"
	"github.com/williamokano/docdeploy/pkg/storage"
)

// Backend mirrors the site to a remote directory over SFTP
type Backend struct {
	name       string
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	remotePath string
}

func init() {
	storage.RegisterBackend("ssh", func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New creates a new SSH/SFTP backend
func New(cfg storage.Config) (*Backend, error) {
	sshCfg, err := parseConfig(cfg.Name, cfg.BaseDir, cfg.Options)
	if err != nil {
		return nil, err
	}

	sshClient, err := sshconn.Dial(sshconn.Options{
		Host:          sshCfg.Host,
		Port:          sshCfg.Port,
		User:          sshCfg.User,
		Password:      sshCfg.Password,
		KeyFile:       sshCfg.KeyPath,
		KeyPassphrase: sshCfg.KeyPassphrase,
		KnownHosts:    sshCfg.KnownHosts,
	})
	if err != nil {
		if errors.Is(err, sshconn.ErrNoAuth) {
			return nil, storage.WrapError(cfg.Name, "connect", errors.Join(storage.ErrInvalidConfig, err))
		}
		return nil, storage.WrapError(cfg.Name, "connect", errors.Join(storage.ErrConnFailed, err))
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, storage.WrapError(cfg.Name, "sftp init", err)
	}

	if err := sftpClient.MkdirAll(sshCfg.RemotePath); err != nil {
		sftpClient.Close()
		sshClient.Close()
		return nil, storage.WrapError(cfg.Name, "mkdir", err)
	}

	return &Backend{
		name:       cfg.Name,
		sshClient:  sshClient,
		sftpClient: sftpClient,
		remotePath: sshCfg.RemotePath,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "ssh" }

func (b *Backend) fullPath(p string) string {
	return path.Join(b.remotePath, p)
}

// Write uploads a file via SFTP
func (b *Backend) Write(ctx context.Context, sourcePath, destPath string) error {
	return storage.WithRetry(ctx, storage.DefaultRetryConfig(), func() error {
		localFile, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer localFile.Close()

		remotePath := b.fullPath(destPath)

		if err := b.sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
			return storage.WrapError(b.name, "mkdir", err)
		}

		remoteFile, err := b.sftpClient.Create(remotePath)
		if err != nil {
			return storage.WrapError(b.name, "create", err)
		}
		defer remoteFile.Close()

		if _, err := io.Copy(remoteFile, localFile); err != nil {
			return storage.WrapError(b.name, "upload", errors.Join(storage.ErrConnFailed, err))
		}

		return nil
	})
}

// Delete removes a file via SFTP
func (b *Backend) Delete(ctx context.Context, filePath string) error {
	if err := b.sftpClient.Remove(b.fullPath(filePath)); err != nil {
		if os.IsNotExist(err) {
			return storage.WrapError(b.name, "delete", storage.ErrNotFound)
		}
		return storage.WrapError(b.name, "delete", err)
	}
	return nil
}

// List walks the remote directory and returns every regular file below prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo

	walker := b.sftpClient.Walk(b.remotePath)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return nil, storage.WrapError(b.name, "list", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info := walker.Stat()
		if !info.Mode().IsRegular() {
			continue
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(walker.Path(), b.remotePath), "/")
		if !strings.HasPrefix(rel, prefix) {
			continue
		}

		files = append(files, storage.FileInfo{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, filePath string) (*storage.FileInfo, error) {
	info, err := b.sftpClient.Stat(b.fullPath(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    filePath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if file exists
func (b *Backend) Exists(ctx context.Context, filePath string) (bool, error) {
	return storage.ExistsViaStat(ctx, b, filePath)
}

// Close releases resources
func (b *Backend) Close() error {
	if b.sftpClient != nil {
		b.sftpClient.Close()
	}
	if b.sshClient != nil {
		b.sshClient.Close()
	}
	return nil
}
