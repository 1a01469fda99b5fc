/*
Copyright © 2024 the Hydrodata authors.
This file is part of Hydrodata.

Hydrodata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hydrodata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hydrodata.  If not, see <http://www.gnu.org/licenses/>.
*/

package hydrodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// DefaultRemoteURL is the public archive API endpoint.
const DefaultRemoteURL = "https://hydrogen.princeton.edu"

// pinFile is the registration file in the user's home directory.
const pinFile = ".hydrodata/pin.json"

type pinRecord struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// RegisterPIN stores the email and PIN created on the archive website
// in the user's home directory, readable only by the user. Later
// remote requests authenticate with it.
func RegisterPIN(email, pin string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("hydrodata: registering pin: %v", err)
	}
	path := filepath.Join(home, filepath.FromSlash(pinFile))
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("hydrodata: registering pin: %v", err)
	}
	data, err := json.Marshal(pinRecord{Email: email, PIN: pin})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// RegisteredPIN returns the email and PIN stored by RegisterPIN.
func RegisteredPIN() (email, pin string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(filepath.Join(home, filepath.FromSlash(pinFile)))
	if err != nil {
		return "", "", fmt.Errorf("hydrodata: no email/pin is registered; " +
			"create a PIN on the archive website and call RegisterPIN")
	}
	var rec pinRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", "", fmt.Errorf("hydrodata: malformed pin registration: %v", err)
	}
	return rec.Email, rec.PIN, nil
}

// Remote downloads archive files over the archive HTTP API. It
// implements Fetcher.
type Remote struct {
	URL    string // API endpoint; DefaultRemoteURL if empty
	Client *http.Client
	Log    *logrus.Logger

	mx      sync.Mutex
	token   string
	expires time.Time
}

func (r *Remote) url() string {
	if r.URL == "" {
		return DefaultRemoteURL
	}
	return r.URL
}

func (r *Remote) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

// authenticate exchanges the registered email and PIN for a bearer
// token, caching it until it expires.
func (r *Remote) authenticate(ctx context.Context) (string, error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.token != "" && time.Now().Before(r.expires) {
		return r.token, nil
	}
	email, pin, err := RegisteredPIN()
	if err != nil {
		return "", err
	}
	u := fmt.Sprintf("%s/api/api_pins?pin=%s&email=%s", r.url(),
		url.QueryEscape(pin), url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hydrodata: no registered PIN for email %q: status %d", email, resp.StatusCode)
	}
	var body struct {
		Token   string `json:"jwt_token"`
		Expires string `json:"expires"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("hydrodata: decoding authentication response: %v", err)
	}
	r.token = body.Token
	r.expires = time.Now().Add(time.Hour)
	if t, err := time.Parse("2006/01/02 15:04:05 GMT-0000", body.Expires); err == nil {
		r.expires = t
	}
	return r.token, nil
}

// Fetch downloads remotePath from the archive API into localPath,
// retrying transient failures with exponential backoff. The download
// goes to a temporary file first so a partial download is never
// visible at localPath.
func (r *Remote) Fetch(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}
	return backoff.RetryNotify(
		func() error {
			return r.fetchOnce(ctx, remotePath, localPath)
		},
		backoff.WithContext(backoff.NewExponentialBackOff(), ctx),
		func(err error, d time.Duration) {
			if r.Log != nil {
				r.Log.WithField("path", remotePath).Warnf("%v: retrying in %v", err, d)
			}
		},
	)
}

func (r *Remote) fetchOnce(ctx context.Context, remotePath, localPath string) error {
	token, err := r.authenticate(ctx)
	if err != nil {
		return backoff.Permanent(err)
	}
	u := fmt.Sprintf("%s/api/data-file?path=%s", r.url(), url.QueryEscape(remotePath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := r.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(&DataNotFoundError{Path: remotePath, Message: "file does not exist in the remote archive"})
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("hydrodata: fetching %s: status %d", remotePath, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".fetch-*")
	if err != nil {
		return backoff.Permanent(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), localPath)
}
