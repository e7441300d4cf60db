// Command pv is a CLI client for the PhotoVault service.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"photovault/internal/crypto/clientcrypto"
)

// ---- config/token store ----

type tokenFile struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "photovault")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "photovault")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(username, tok string) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{Token: tok, Username: username})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("no token (login required)")
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil || tf.Token == "" {
		return "", errors.New("no token (login required)")
	}
	return tf.Token, nil
}

func masterKeyPath() string { return filepath.Join(cfgDir(), "master.key") }

func saveMasterKey(key []byte) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	return os.WriteFile(masterKeyPath(), key, 0o600)
}

func loadMasterKey() ([]byte, error) {
	key, err := os.ReadFile(masterKeyPath())
	if err != nil {
		return nil, errors.New("no master key; login first")
	}
	return key, nil
}

// ---- http helpers ----

type apiError struct {
	Message string `json:"message"`
}

func postJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, out)
}

func authRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	tok, err := loadToken()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return req, nil
}

func do(req *http.Request, out any) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Message != "" {
			return fmt.Errorf("server: %s (%s)", ae.Message, resp.Status)
		}
		return fmt.Errorf("server: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `pv CLI
Usage:
  pv -server URL <cmd> [args]

Commands:
  version
  signup     -u <username> -e <email> -p <password>
  login      -u <username> -p <password>           (saves token + master key)
  list
  upload     -file <path>                          (encrypts before upload)
  download   -name <filename> [-out <path>]        (decrypts after download)
  rm         -id <uuid>
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the HTTP API. All photo content is
// encrypted client-side under the master key before it leaves the machine.
func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("pv %s (%s)\n", version, buildDate)

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u, -e and -p")
			os.Exit(1)
		}
		if err := signup(ctx, *server, *u, *e, *p); err != nil {
			fail(err)
		}
		fmt.Println("account created")

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		if err := login(ctx, *server, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("logged in")

	case "list":
		req, err := authRequest(ctx, http.MethodGet, *server+"/api/secure/photos/list", nil)
		if err != nil {
			fail(err)
		}
		var items []struct {
			ID          string `json:"id"`
			Filename    string `json:"filename"`
			ContentType string `json:"contentType"`
		}
		if err := do(req, &items); err != nil {
			fail(err)
		}
		for _, it := range items {
			fmt.Printf("%s\t%s\t%s\n", it.ID, it.Filename, it.ContentType)
		}

	case "upload":
		fs := flag.NewFlagSet("upload", flag.ExitOnError)
		file := fs.String("file", "", "path to photo")
		_ = fs.Parse(flag.Args()[1:])
		if *file == "" {
			fmt.Fprintln(os.Stderr, "need -file")
			os.Exit(1)
		}
		if err := upload(ctx, *server, *file); err != nil {
			fail(err)
		}
		fmt.Println("uploaded")

	case "download":
		fs := flag.NewFlagSet("download", flag.ExitOnError)
		name := fs.String("name", "", "stored filename")
		out := fs.String("out", "", "output path (defaults to filename)")
		_ = fs.Parse(flag.Args()[1:])
		if *name == "" {
			fmt.Fprintln(os.Stderr, "need -name")
			os.Exit(1)
		}
		dst := *out
		if dst == "" {
			dst = *name
		}
		if err := download(ctx, *server, *name, dst); err != nil {
			fail(err)
		}
		fmt.Println("saved to", dst)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		req, err := authRequest(ctx, http.MethodDelete, *server+"/api/secure/photos/delete/"+*id, nil)
		if err != nil {
			fail(err)
		}
		if err := do(req, nil); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	default:
		usage()
	}
}

// signup generates fresh master and verification keys, encrypts both under
// the password, and registers the account. The plain verification key is the
// server-side comparison secret.
func signup(ctx context.Context, server, username, email, password string) error {
	masterKey, verificationKey, err := clientcrypto.GenerateUserKeys()
	if err != nil {
		return err
	}
	encMK, err := clientcrypto.EncryptWithPassword([]byte(masterKey), []byte(password))
	if err != nil {
		return err
	}
	encVK, err := clientcrypto.EncryptWithPassword([]byte(verificationKey), []byte(password))
	if err != nil {
		return err
	}
	body := map[string]string{
		"username":              username,
		"email":                 email,
		"enc_masterkey":         encMK,
		"enc_verificationkey":   encVK,
		"plain_verificationkey": verificationKey,
	}
	return postJSON(ctx, server+"/api/auth/signup", body, nil)
}

// login runs both protocol phases: fetch the encrypted blobs, decrypt them
// locally, prove possession of the verification key, and cache the session
// token and master key.
func login(ctx context.Context, server, username, password string) error {
	var blobs struct {
		EncMasterKey       string `json:"enc_masterkey"`
		EncVerificationKey string `json:"enc_verificationkey"`
	}
	if err := postJSON(ctx, server+"/api/auth/signin", map[string]string{"username": username}, &blobs); err != nil {
		return err
	}

	verificationKey, err := clientcrypto.DecryptWithPassword(blobs.EncVerificationKey, []byte(password))
	if err != nil {
		return errors.New("wrong password")
	}
	masterKeyB64, err := clientcrypto.DecryptWithPassword(blobs.EncMasterKey, []byte(password))
	if err != nil {
		return errors.New("wrong password")
	}

	var vr struct {
		Verified bool   `json:"verified"`
		Token    string `json:"token"`
	}
	err = postJSON(ctx, server+"/api/auth/verify", map[string]string{
		"username":        username,
		"verificationKey": string(verificationKey),
	}, &vr)
	if err != nil {
		return err
	}
	if !vr.Verified || vr.Token == "" {
		return errors.New("verification rejected")
	}

	masterKey, err := base64.StdEncoding.DecodeString(string(masterKeyB64))
	if err != nil {
		return errors.New("corrupt master key")
	}
	if err := saveMasterKey(masterKey); err != nil {
		return err
	}
	return saveToken(username, vr.Token)
}

// upload encrypts the file under the master key and posts it as multipart.
func upload(ctx context.Context, server, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	masterKey, err := loadMasterKey()
	if err != nil {
		return err
	}
	sealed, err := clientcrypto.EncryptFile(masterKey, content)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := part.Write(sealed); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := authRequest(ctx, http.MethodPost, server+"/api/secure/photos/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(req, nil)
}

// download fetches the sealed blob and decrypts it with the master key.
func download(ctx context.Context, server, name, dst string) error {
	masterKey, err := loadMasterKey()
	if err != nil {
		return err
	}
	req, err := authRequest(ctx, http.MethodGet, server+"/api/secure/photos/download/"+name, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server: %s", resp.Status)
	}
	sealed, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	content, err := clientcrypto.DecryptFile(masterKey, sealed)
	if err != nil {
		return errors.New("decrypt failed: wrong key or corrupt file")
	}
	return os.WriteFile(dst, content, 0o600)
}
