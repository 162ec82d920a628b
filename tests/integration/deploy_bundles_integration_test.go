package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"orgtasks/internal/adapters"
	"orgtasks/internal/app"
	"orgtasks/internal/types"
)

func TestDeployBundlesFlow(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"billing", "accounts"} {
		bundle := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(bundle, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(bundle, "package.xml"), []byte("<Package/>"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip me"), 0644))

	var deployedNames []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/data/v60.0/metadata/deployments", r.URL.Path)
		var request struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		deployedNames = append(deployedNames, request.Name)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	service := app.Service{
		Deployer: adapters.NewRestDeployAdapter(adapters.RestDeployConfig{
			InstanceURL: server.URL,
			AccessToken: "token",
			APIVersion:  "60.0",
		}),
		Plans: adapters.NewPlanFileAdapter(),
	}

	result, err := service.DeployBundles(t.Context(), app.DeployBundlesRequest{Path: root})
	require.NoError(t, err)

	want := []string{"accounts", "billing"}
	if diff := cmp.Diff(want, result.Bundles); diff != "" {
		t.Fatalf("unexpected bundles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, deployedNames); diff != "" {
		t.Fatalf("unexpected deployments (-want +got):\n%s", diff)
	}

	// A frozen plan of the same directory numbers the same bundles in
	// the same order (the file entry is included by contract).
	frozen, err := service.Freeze(t.Context(), app.FreezeRequest{
		Path:       root,
		ParentStep: types.StepRef{Path: "deploy_bundles", StepNum: "1"},
		Project:    types.ProjectInfo{RepoOwner: "acme", RepoName: "widgets", CommitTag: "v1"},
	})
	require.NoError(t, err)
	require.Len(t, frozen.Steps, 3)
	require.Equal(t, "1.1", frozen.Steps[0].StepNum)
	require.Equal(t, "Deploy "+root+"/accounts", frozen.Steps[0].Name)
	require.Equal(t, "Deploy "+root+"/billing", frozen.Steps[1].Name)
}
