package xmlfix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbciowa/sba-converter/internal/xmltree"
)

var testLog = zerolog.Nop()

func childTags(n *xmltree.Node) []string {
	tags := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		tags = append(tags, c.Tag)
	}
	return tags
}

func TestReorder(t *testing.T) {
	intake := xmltree.New("ClientIntake")
	intake.AddText("CurrentlyInBusiness", "Yes")
	intake.AddText("Sex", "Female")
	race := intake.Add("Race")
	race.AddText("Code", "White")
	intake.AddText("Ethnicity", "Non-Hispanic")

	Reorder(intake, ClientIntakeOrder)

	assert.Equal(t,
		[]string{"Race", "Ethnicity", "Sex", "CurrentlyInBusiness"},
		childTags(intake))
}

func TestReorderKeepsRepeatsAndUnknowns(t *testing.T) {
	intake := xmltree.New("ClientIntake")
	intake.AddText("Custom2", "b")
	intake.AddText("Sex", "Female")
	intake.AddText("Race", "first")
	intake.AddText("Custom1", "a")
	intake.AddText("Race", "second")

	Reorder(intake, ClientIntakeOrder)

	assert.Equal(t,
		[]string{"Race", "Race", "Sex", "Custom2", "Custom1"},
		childTags(intake))
	// Repeated tags keep their relative order.
	races := intake.FindAll("Race")
	assert.Equal(t, "first", races[0].Text)
	assert.Equal(t, "second", races[1].Text)
}

func buildDoc(withCIB bool) *xmltree.Node {
	root := xmltree.New("CounselingInformation")
	rec := root.Add("CounselingRecord")
	rec.AddText("PartnerClientNumber", "C-001")
	intake := rec.Add("ClientIntake")
	intake.AddText("Sex", "Female")
	if withCIB {
		intake.AddText("CurrentlyInBusiness", "Yes")
	}
	intake.AddText("Race", "White")
	return root
}

func TestDocument(t *testing.T) {
	root := buildDoc(true)
	fixed := Document(root, Options{}, testLog)
	assert.Equal(t, 1, fixed)

	intake := root.Find("CounselingRecord").Find("ClientIntake")
	assert.Equal(t, []string{"Race", "Sex", "CurrentlyInBusiness"}, childTags(intake))
}

func TestDocumentAddMissing(t *testing.T) {
	root := buildDoc(false)
	Document(root, Options{AddMissing: true}, testLog)

	intake := root.Find("CounselingRecord").Find("ClientIntake")
	cib := intake.Find("CurrentlyInBusiness")
	require.NotNil(t, cib)
	assert.Equal(t, "No", cib.Text)
	// Injected element lands in canonical position, not at the end.
	assert.Equal(t, []string{"Race", "Sex", "CurrentlyInBusiness"}, childTags(intake))
}

func TestDocumentAddMissingDoesNotOverwrite(t *testing.T) {
	root := buildDoc(true)
	Document(root, Options{AddMissing: true}, testLog)

	intake := root.Find("CounselingRecord").Find("ClientIntake")
	cibs := intake.FindAll("CurrentlyInBusiness")
	require.Len(t, cibs, 1)
	assert.Equal(t, "Yes", cibs[0].Text)
}

func TestDocumentSkipsRecordsWithoutIntake(t *testing.T) {
	root := xmltree.New("CounselingInformation")
	root.Add("CounselingRecord").AddText("PartnerClientNumber", "C-001")
	assert.Equal(t, 0, Document(root, Options{}, testLog))
}

func TestFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xml")
	require.NoError(t, xmltree.WriteFile(path, buildDoc(true)))

	require.NoError(t, File(path, "", Options{}, testLog))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// A second pass over fixed output changes nothing.
	require.NoError(t, File(path, "", Options{}, testLog))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFileSeparateOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.xml")
	out := filepath.Join(dir, "fixed.xml")
	require.NoError(t, xmltree.WriteFile(in, buildDoc(true)))

	require.NoError(t, File(in, out, Options{}, testLog))

	fixedRoot, err := xmltree.ParseFile(out)
	require.NoError(t, err)
	intake := fixedRoot.Find("CounselingRecord").Find("ClientIntake")
	assert.Equal(t, []string{"Race", "Sex", "CurrentlyInBusiness"}, childTags(intake))

	// Source untouched.
	origRoot, err := xmltree.ParseFile(in)
	require.NoError(t, err)
	origIntake := origRoot.Find("CounselingRecord").Find("ClientIntake")
	assert.Equal(t, []string{"Sex", "CurrentlyInBusiness", "Race"}, childTags(origIntake))
}

func TestFileBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xml")
	require.NoError(t, xmltree.WriteFile(path, buildDoc(true)))

	require.NoError(t, File(path, "", Options{Backup: true}, testLog))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	backups := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".bak" {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, xmltree.WriteFile(filepath.Join(dir, "a.xml"), buildDoc(true)))
	require.NoError(t, xmltree.WriteFile(filepath.Join(sub, "b.xml"), buildDoc(true)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))

	count, err := Dir(dir, "", "", false, Options{}, testLog)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = Dir(dir, "", "", true, Options{}, testLog)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDirMirrorsOutput(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "fixed")
	require.NoError(t, xmltree.WriteFile(filepath.Join(inDir, "a.xml"), buildDoc(true)))

	count, err := Dir(inDir, outDir, "", false, Options{}, testLog)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(outDir, "a.xml"))
}

func TestDirBadFileDoesNotStopSweep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("not xml"), 0o644))
	require.NoError(t, xmltree.WriteFile(filepath.Join(dir, "b.xml"), buildDoc(true)))

	count, err := Dir(dir, "", "", false, Options{}, testLog)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
