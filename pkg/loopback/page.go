package loopback

// fragmentForwardPage reposts the URL fragment to the exchange endpoint.
// The fragment never reaches the server in the initial request, so this
// script is the only way to capture an implicit-flow token.
const fragmentForwardPage = `<!DOCTYPE html>
<html>
<head><title>Signing in…</title></head>
<body>
<p>Completing sign-in…</p>
<script>
fetch("/exchange", { method: "POST", body: window.location.hash })
	.then(function (res) {
		document.body.textContent = res.ok
			? "Authentication complete. You can close this window."
			: "Authentication failed. Please close this window and try again.";
	})
	.catch(function () {
		document.body.textContent = "Authentication failed. Please close this window and try again.";
	});
</script>
</body>
</html>`

// completePage is shown after a code was captured from the query string.
const completePage = `<!DOCTYPE html>
<html>
<head><title>Signed in</title></head>
<body>
<p>Authentication complete. You can close this window.</p>
</body>
</html>`
