package filerepo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var _ sessions.Repo = (*Repo)(nil)

const (
	fileVersion = 1

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltSize     = 16
)

// fileContents is the on-disk layout. Values is used for plaintext files, the other fields when a passphrase is set.
type fileContents struct {
	Version    int               `json:"version"`
	Values     map[string]string `json:"values,omitempty"`
	Salt       []byte            `json:"salt,omitempty"`
	Nonce      []byte            `json:"nonce,omitempty"`
	Ciphertext []byte            `json:"ciphertext,omitempty"`
}

// Repo keeps the durable session in a single JSON file. Every write replaces the file through a rename,
// so readers see either the old or the new contents and never a partial write.
// With a passphrase the values are sealed with XChaCha20-Poly1305 under an Argon2id derived key.
type Repo struct {
	path       string
	passphrase []byte

	lock   sync.Mutex
	salt   []byte
	key    []byte
	values map[string]string
	loaded bool
}

// New creates a repo backed by path. An empty passphrase stores values in plain JSON.
func New(path, passphrase string) *Repo {
	r := &Repo{path: path}
	if passphrase != "" {
		r.passphrase = []byte(passphrase)
	}
	return r
}

func (r *Repo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.load(); err != nil {
		return "", false, err
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *Repo) SetMany(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	next := make(map[string]string, len(r.values)+len(values))
	for k, v := range r.values {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	if err := r.write(next); err != nil {
		return err
	}
	r.values = next
	return nil
}

func (r *Repo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.load(); err != nil {
		return err
	}
	next := make(map[string]string, len(r.values))
	for k, v := range r.values {
		next[k] = v
	}
	for _, k := range keys {
		delete(next, k)
	}
	if len(next) == len(r.values) {
		return nil
	}
	if err := r.write(next); err != nil {
		return err
	}
	r.values = next
	return nil
}

// load reads the file once. An unreadable or undecryptable file is discarded and the repo starts empty,
// so the next write replaces it with a fresh file and salt.
func (r *Repo) load() error {
	if r.loaded {
		return nil
	}

	values, err := r.read()
	if errors.Is(err, errors.ErrCorruptSession) {
		log.Warn().Err(err).Str("path", r.path).Msg("Discarding unreadable session file")
		r.salt, r.key = nil, nil
		values = nil
	} else if err != nil {
		return err
	}
	if values == nil {
		values = make(map[string]string)
	}
	r.values = values
	r.loaded = true
	return nil
}

func (r *Repo) read() (map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[filerepo load] read %s", r.path)
	}

	var contents fileContents
	if err := json.Unmarshal(raw, &contents); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[filerepo load] %s: %v", r.path, err)
	}
	if len(contents.Ciphertext) == 0 {
		return contents.Values, nil
	}
	if r.passphrase == nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[filerepo load] %s is encrypted and no passphrase is set", r.path)
	}
	return r.open(contents)
}

func (r *Repo) open(contents fileContents) (map[string]string, error) {
	r.salt = contents.Salt
	r.key = deriveKey(r.passphrase, r.salt)

	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return nil, errors.Wrapf(err, "[filerepo open] cipher")
	}
	if len(contents.Nonce) != aead.NonceSize() {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[filerepo open] bad nonce length %d", len(contents.Nonce))
	}
	plain, err := aead.Open(nil, contents.Nonce, contents.Ciphertext, []byte(sessionAAD))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[filerepo open] wrong passphrase or tampered file")
	}

	var values map[string]string
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[filerepo open] %v", err)
	}
	return values, nil
}

const sessionAAD = "billing-admin/session/v1"

func (r *Repo) seal(values map[string]string) (fileContents, error) {
	if r.key == nil {
		r.salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, r.salt); err != nil {
			return fileContents{}, errors.Wrapf(err, "[filerepo seal] salt")
		}
		r.key = deriveKey(r.passphrase, r.salt)
	}

	aead, err := chacha20poly1305.NewX(r.key)
	if err != nil {
		return fileContents{}, errors.Wrapf(err, "[filerepo seal] cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fileContents{}, errors.Wrapf(err, "[filerepo seal] nonce")
	}
	plain, err := json.Marshal(values)
	if err != nil {
		return fileContents{}, errors.Wrapf(err, "[filerepo seal] encode")
	}
	return fileContents{
		Version:    fileVersion,
		Salt:       r.salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, []byte(sessionAAD)),
	}, nil
}

func (r *Repo) write(values map[string]string) error {
	contents := fileContents{Version: fileVersion, Values: values}
	if r.passphrase != nil {
		var err error
		if contents, err = r.seal(values); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[filerepo write] encode")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "[filerepo write] mkdir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "[filerepo write] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[filerepo write] write temp")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[filerepo write] sync temp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[filerepo write] close temp")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.Wrapf(err, "[filerepo write] rename")
	}
	return nil
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}
