package extract

const janeProfile = `<html><body>
<section class="top-card">
  <h1>Jane Doe</h1>
  <ul class="pv-top-card--list pv-top-card--list-bullet mt1">
    <li class="inline-block">500+ connections</li>
  </ul>
  <ul><li class="t-16 t-black t-normal inline-block">
      San Francisco Bay Area
  </li></ul>
</section>
<section id="education">
  <div class="pv-entity__degree-info">
    <h3>Stanford University</h3>
    <div>Degree Name</div><div>MBA</div>
    <div>Field Of Study</div><div>Business</div>
  </div>
  <div class="pv-entity__degree-info">
    <h3>MIT</h3>
    <div>Degree Name</div><div>BS</div>
  </div>
  <div class="pv-entity__degree-info"></div>
</section>
<section id="experience">
  <a data-control-name="background_details_company" href="#">
    <h3>Chief Executive Officer</h3>
    <div>Company Name</div><div>Acme Robotics</div>
    <div>Dates Employed</div><div>Jan 2019 – Present</div>
  </a>
  <a data-control-name="background_details_company" href="#">
    <h3>Company Name</h3>
    <div>Globex</div>
  </a>
  <a data-control-name="background_details_company" href="#">
    <h3>Intern</h3>
  </a>
</section>
</body></html>`

const emptyProfile = `<html><body><h1>Nobody</h1></body></html>`
