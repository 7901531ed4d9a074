package server

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PDF Translator</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; }
textarea { width: 100%; height: 20rem; }
</style>
</head>
<body>
<h1>PDF Translator</h1>
<form id="upload">
<input type="file" name="file" accept="application/pdf" required>
<button type="submit">Extract</button>
</form>
<p id="status"></p>
<textarea id="text" readonly></textarea>
<p>
<button id="translate" disabled>Translate</button>
<a id="download" hidden>Download translated PDF</a>
</p>
<script>
let id = null;
const status = document.getElementById("status");
const text = document.getElementById("text");
document.getElementById("upload").addEventListener("submit", async (e) => {
  e.preventDefault();
  status.textContent = "Extracting...";
  const res = await fetch("/api/v1/documents", { method: "POST", body: new FormData(e.target) });
  const body = await res.json();
  if (!res.ok) { status.textContent = body.error; return; }
  id = body.id;
  text.value = body.text;
  status.textContent = body.pages + " pages, " + body.images.length + " images";
  document.getElementById("translate").disabled = false;
});
document.getElementById("translate").addEventListener("click", async () => {
  status.textContent = "Translating...";
  const res = await fetch("/api/v1/documents/" + id + "/translate", { method: "POST" });
  const body = await res.json();
  if (!res.ok) { status.textContent = body.error; return; }
  text.value = body.text;
  status.textContent = "Translation complete";
  const link = document.getElementById("download");
  link.href = "/api/v1/documents/" + id + "/pdf";
  link.hidden = false;
});
</script>
</body>
</html>
`
