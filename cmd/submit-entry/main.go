// Command submit-entry drives the client side of the submission
// pipeline against a running api-server: manifest → signed tickets →
// concurrent uploads → create-bid-entry → acceptance email. It does
// what the browser form does, from the shell.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"greenguardian/internal/objectstore"
	"greenguardian/internal/uploads"
	"greenguardian/models"

	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	godotenv.Load()

	var (
		server     = flag.String("server", "http://localhost:8080", "api-server base URL")
		entryPath  = flag.String("entry", "", "JSON file with the submission fields")
		keyVisual  = flag.String("key-visual", "", "key visual image (png/jpeg)")
		bidDoc     = flag.String("bid-doc", "", "bid document (pdf)")
		projectDoc = flag.String("project-doc", "", "project documentation (pdf)")
		authForm   = flag.String("auth-form", "", "authorization form (pdf, LGU track)")
		permit     = flag.String("business-permit", "", "business permit (Business track)")
		dtiSec     = flag.String("dti-sec", "", "DTI/SEC permit (Business track)")
		supporting = flag.String("supporting", "", "comma-separated supporting documents")
	)
	flag.Parse()

	if *entryPath == "" {
		log.Error("missing -entry")
		os.Exit(2)
	}

	var entry models.CreateBidEntryRequest
	raw, err := os.ReadFile(*entryPath)
	if err == nil {
		err = json.Unmarshal(raw, &entry)
	}
	if err != nil {
		log.Error("read entry file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stage := func(path string) (*models.FileManifest, *uploads.File, error) {
		if path == "" {
			return nil, nil, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		ct := mime.TypeByExtension(filepath.Ext(path))
		if ct == "" {
			ct = http.DetectContentType(data)
		}
		name := filepath.Base(path)
		return &models.FileManifest{Name: name, Type: ct}, &uploads.File{ContentType: ct, Data: data}, nil
	}

	manifest := models.InitUploadRequest{Track: entry.Track, Supporting: []models.FileManifest{}}
	files := uploads.Files{}

	must := func(m *models.FileManifest, f *uploads.File, err error) (*models.FileManifest, *uploads.File) {
		if err != nil {
			log.Error("stage file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return m, f
	}

	manifest.KeyVisual, files.KeyVisual = must(stage(*keyVisual))
	manifest.BidDocument, files.BidDocument = must(stage(*bidDoc))
	manifest.ProjectDocumentation, files.ProjectDocumentation = must(stage(*projectDoc))
	manifest.AuthorizationForm, files.AuthorizationForm = must(stage(*authForm))
	manifest.BusinessPermit, files.BusinessPermit = must(stage(*permit))
	manifest.DTISec, files.DTISec = must(stage(*dtiSec))

	if *supporting != "" {
		for _, p := range strings.Split(*supporting, ",") {
			m, f := must(stage(strings.TrimSpace(p)))
			manifest.Supporting = append(manifest.Supporting, *m)
			files.Supporting = append(files.Supporting, *f)
		}
	}

	ctx := context.Background()

	var tickets models.InitUploadResponse
	if err := postJSON(ctx, *server+"/api/bid-entry/init-upload", manifest, &tickets); err != nil {
		log.Error("init upload", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("tickets issued", slog.String("folder", tickets.Folder))

	store := objectstore.NewClient(os.Getenv("STORAGE_URL"), os.Getenv("STORAGE_ANON_KEY"))
	if err := uploads.UploadAll(ctx, store, &tickets, &files); err != nil {
		log.Error("upload failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("all files uploaded")

	entry.KeyVisualPath = tickets.KeyVisual.Path
	entry.BidDocPath = tickets.BidDocument.Path
	entry.ProjectDocPath = tickets.ProjectDocumentation.Path
	if tickets.AuthorizationForm != nil {
		entry.AuthorizationFormDocPath = &tickets.AuthorizationForm.Path
	}
	if tickets.BusinessPermit != nil {
		entry.BusinessPermitPath = &tickets.BusinessPermit.Path
	}
	if tickets.DTISec != nil {
		entry.DTISecPermitPath = &tickets.DTISec.Path
	}
	entry.SupportingDocPaths = []string{}
	for _, t := range tickets.Supporting {
		entry.SupportingDocPaths = append(entry.SupportingDocPaths, t.Path)
	}

	var created models.CreateBidEntryResponse
	if err := postJSON(ctx, *server+"/api/create-bid-entry", entry, &created); err != nil {
		log.Error("create bid entry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("submission accepted", slog.String("reference_id", created.ReferenceID))

	email := models.SendEmailRequest{
		Email:         created.Email,
		FullName:      created.FullName,
		OrgName:       created.OrgName,
		Track:         entry.Track,
		AwardCategory: created.AwardCategory,
		ReferenceID:   created.ReferenceID,
	}
	if err := postJSON(ctx, *server+"/api/send-email", email, nil); err != nil {
		// Best effort; the submission already stands.
		log.Warn("acceptance email failed", slog.String("error", err.Error()))
	}

	fmt.Println(created.ReferenceID)
}

func postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
