package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/Base.cs b/src/Base.cs
index 1111111..2222222 100644
--- a/src/Base.cs
+++ b/src/Base.cs
@@ -3 +3,2 @@ namespace Shop
-    /// <summary>Old.</summary>
+    /// <summary>New.</summary>
+    /// <remarks>More.</remarks>
@@ -10,2 +11,0 @@ class Base
-    // gone
-    // gone too
diff --git a/src/Old.cs b/src/Old.cs
deleted file mode 100644
index 3333333..0000000
--- a/src/Old.cs
+++ /dev/null
@@ -1,3 +0,0 @@
-class Old
-{
-}
`

func TestParseDiff(t *testing.T) {
	changes, err := ParseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "src/Base.cs", changes[0].Path)
	assert.False(t, changes[0].Deleted)
	assert.Equal(t, []int{3, 4, 12}, changes[0].ChangedLines)

	assert.Equal(t, "src/Old.cs", changes[1].Path)
	assert.True(t, changes[1].Deleted)
	assert.Equal(t, []int{1, 2, 3}, changes[1].ChangedLines)
}

func TestParseDiff_Empty(t *testing.T) {
	changes, err := ParseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestGetChangedFiles_SubdirectoryRoot(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	repo := t.TempDir()
	src := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "Foo.cs"), []byte("class Foo { }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("readme\n"), 0o644))
	runGit(t, repo, "init", "-q")
	runGit(t, repo, "add", ".")
	runGit(t, repo, "commit", "-q", "-m", "init")

	require.NoError(t, os.WriteFile(filepath.Join(src, "Foo.cs"), []byte("/// <summary>Foo.</summary>\nclass Foo { }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("changed\n"), 0o644))

	changes, err := GetChangedFiles(context.Background(), src, "HEAD")
	require.NoError(t, err)
	require.Len(t, changes, 1, "changes outside the root are left out")
	assert.Equal(t, "Foo.cs", changes[0].Path)
	assert.Equal(t, []int{1}, changes[0].ChangedLines)
}
